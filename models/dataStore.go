package models

import (
	"errors"
	"sync"
)

// ErrNotLoaded is returned by DataStore.Get before the first load finishes.
var ErrNotLoaded = errors.New("data has not been loaded yet")

// DataStore holds the last payload that loaded successfully and the error
// from the most recent load, if it failed. Renders read it, a refresh
// replaces it.
type DataStore struct {
	mu      sync.RWMutex
	payload *Payload
	err     error
}

// Set records the outcome of a load. A failed load keeps the previous
// payload, so only the error is replaced.
func (s *DataStore) Set(payload *Payload, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	if err == nil {
		s.payload = payload
	}
}

// Get returns the stored payload. Without one it returns the load error, or
// ErrNotLoaded when nothing has been tried yet.
func (s *DataStore) Get() (*Payload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.payload != nil {
		return s.payload, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, ErrNotLoaded
}

// LastError is the error from the most recent load, nil if it succeeded.
func (s *DataStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
