// Package audio holds the runtime set of prompt URLs played by the IVR.
// The set is mutable at runtime through the admin API; last writer wins and
// a caller mid-prompt may still hear the previous recording. That staleness
// is bounded to one in-flight call because prompts are read once per call.
package audio

import (
	"errors"
	"strings"
	"sync"
)

// Kind names one of the three prompt slots.
type Kind string

const (
	KindMenu Kind = "menu"
	KindOpt1 Kind = "opt1"
	KindOpt3 Kind = "opt3"
)

var (
	// ErrUnknownKind is returned when a slot name is not menu, opt1 or opt3.
	ErrUnknownKind = errors.New("unknown audio kind")

	// ErrBadURL is returned when a prompt URL does not use https.
	ErrBadURL = errors.New("audio url must start with https://")
)

// ParseKind converts a slot name from the wire into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMenu, KindOpt1, KindOpt3:
		return Kind(s), nil
	}
	return "", ErrUnknownKind
}

// Snapshot is a consistent read of all three slots.
type Snapshot struct {
	Menu string `json:"menu"`
	Opt1 string `json:"opt1"`
	Opt3 string `json:"opt3"`
}

// Set is the process-wide audio slot store. Reads come from every inbound
// call; writes come only from the admin set-audio operation.
type Set struct {
	mu   sync.RWMutex
	urls map[Kind]string
}

// NewSet creates a Set seeded from configuration. Empty seed values leave
// the corresponding slot empty until the admin sets it.
func NewSet(menu, opt1, opt3 string) *Set {
	return &Set{
		urls: map[Kind]string{
			KindMenu: menu,
			KindOpt1: opt1,
			KindOpt3: opt3,
		},
	}
}

// Get returns the current URL for a slot, or "" for an unknown slot.
func (s *Set) Get(kind Kind) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.urls[kind]
}

// Update replaces a slot's URL. No rollback, no history.
func (s *Set) Update(kind Kind, url string) error {
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}
	if !strings.HasPrefix(url, "https://") {
		return ErrBadURL
	}

	s.mu.Lock()
	s.urls[kind] = url
	s.mu.Unlock()
	return nil
}

// Snapshot returns all three slots under a single read lock.
func (s *Set) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Menu: s.urls[KindMenu],
		Opt1: s.urls[KindOpt1],
		Opt3: s.urls[KindOpt3],
	}
}
