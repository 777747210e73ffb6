package downloader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gdpchart/data"
	"github.com/gdpchart/models"
)

// ErrBothSourcesFailed is returned when the primary source and the fallback
// both failed to produce the dataset.
var ErrBothSourcesFailed = errors.New("both sources failed")

// State is a step of a single Load.
type State int

const (
	StateIdle State = iota
	StateRequestingPrimary
	StateRequestingFallback
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingPrimary:
		return "requesting primary"
	case StateRequestingFallback:
		return "requesting fallback"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Loader fetches the dataset from Primary and, when that answers with a
// non-success status, tries Fallback exactly once.
type Loader struct {
	Primary  Resource
	Fallback Resource

	// FallbackOnTransportError also tries the fallback when the primary
	// fails before any response arrives.
	FallbackOnTransportError bool

	// OnState, when set, is called on every state transition.
	OnState func(State)
}

// NewLoader builds a Loader for a primary URL and a fallback location.
// The fallback is fetched over HTTP when it is a URL and read from dataDir
// otherwise. A nil client means http.DefaultClient.
func NewLoader(primaryURL, fallback, dataDir string, client *http.Client) *Loader {
	l := &Loader{
		Primary: &HTTPResource{URL: primaryURL, Client: client},
	}
	if fallback != "" {
		if data.IsURL(fallback) {
			l.Fallback = &HTTPResource{URL: fallback, Client: client}
		} else {
			l.Fallback = &FileResource{Path: data.ResolveFallback(dataDir, fallback)}
		}
	}
	return l
}

// Load runs one fetch cycle. The returned payload is tagged with the source
// that served it.
func (l *Loader) Load(ctx context.Context) (*models.Payload, error) {
	l.transition(StateIdle)

	l.transition(StateRequestingPrimary)
	body, err := l.Primary.Fetch(ctx)
	if err == nil {
		l.transition(StateDone)
		return newPayload(body, models.OriginPrimary, l.Primary), nil
	}

	if !l.shouldFallback(err) {
		l.transition(StateFailed)
		return nil, err
	}

	log.Printf("Primary source %s failed: %v. Trying fallback %s", l.Primary, err, l.Fallback)
	l.transition(StateRequestingFallback)
	body, fallbackErr := l.Fallback.Fetch(ctx)
	if fallbackErr != nil {
		l.transition(StateFailed)
		return nil, fmt.Errorf("%w: primary: %v, fallback: %w", ErrBothSourcesFailed, err, fallbackErr)
	}

	l.transition(StateDone)
	return newPayload(body, models.OriginFallback, l.Fallback), nil
}

func (l *Loader) shouldFallback(err error) bool {
	if l.Fallback == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr) && l.FallbackOnTransportError
}

func (l *Loader) transition(s State) {
	if l.OnState != nil {
		l.OnState(s)
	}
}

func newPayload(body []byte, origin models.Origin, r Resource) *models.Payload {
	return &models.Payload{
		Body:      body,
		Origin:    origin,
		Location:  r.String(),
		FetchedAt: time.Now(),
	}
}
