package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
)

// Resource is somewhere the raw dataset can be read from.
type Resource interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// TransportError means no response was received at all.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request for %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError means a response arrived with a status other than 200.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to download %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPResource fetches a URL with a plain GET. No timeout is applied beyond
// whatever the client carries.
type HTTPResource struct {
	URL    string
	Client *http.Client
}

func (r *HTTPResource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", r.URL, err)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: r.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: r.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: r.URL, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return body, nil
}

func (r *HTTPResource) String() string {
	return r.URL
}

// FileResource reads the dataset from a local file. A missing file is
// reported the way a server would report it, as a 404 StatusError.
type FileResource struct {
	Path string
}

func (r *FileResource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{URL: r.Path, Err: err}
	}
	body, err := os.ReadFile(r.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &StatusError{URL: r.Path, StatusCode: http.StatusNotFound}
	case errors.Is(err, fs.ErrPermission):
		return nil, &StatusError{URL: r.Path, StatusCode: http.StatusForbidden}
	case err != nil:
		return nil, &TransportError{URL: r.Path, Err: err}
	}
	return body, nil
}

func (r *FileResource) String() string {
	return r.Path
}
