// Package diseases serves the static disease-trend data injected into chat
// prompts and exposed on the assistant context endpoint.
package diseases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// TopN is how many entries feed prompts and the context view.
const TopN = 10

const UnavailableContext = "Disease trend data temporarily unavailable."

var ErrUnavailable = errors.New("disease trend data unavailable")

type Entry struct {
	Disease   string `json:"disease"`
	Outbreaks int64  `json:"outbreaks"`
	Year      string `json:"year"`
	Segment   string `json:"segment,omitempty"`
}

// UnmarshalJSON accepts numeric or string years and outbreak counts.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw struct {
		Disease   string          `json:"disease"`
		Outbreaks json.Number     `json:"outbreaks"`
		Year      json.RawMessage `json:"year"`
		Segment   string          `json:"segment"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.Disease = strings.TrimSpace(raw.Disease)
	if e.Disease == "" {
		e.Disease = "Unknown"
	}
	e.Segment = raw.Segment
	if raw.Outbreaks != "" {
		f, err := raw.Outbreaks.Float64()
		if err != nil {
			return fmt.Errorf("outbreaks for %s: %w", e.Disease, err)
		}
		e.Outbreaks = int64(f)
	}
	e.Year = "N/A"
	if len(raw.Year) > 0 && string(raw.Year) != "null" {
		var s string
		if err := json.Unmarshal(raw.Year, &s); err == nil {
			if strings.TrimSpace(s) != "" {
				e.Year = strings.TrimSpace(s)
			}
		} else {
			var n json.Number
			if err := json.Unmarshal(raw.Year, &n); err != nil {
				return fmt.Errorf("year for %s: %w", e.Disease, err)
			}
			e.Year = n.String()
		}
	}
	return nil
}

// Snapshot is an immutable view of the store. Readers never see a partially
// loaded snapshot; Reload swaps the whole pointer.
type Snapshot struct {
	Entries  []Entry
	LoadedAt time.Time
}

type Store struct {
	path    string
	current atomic.Pointer[Snapshot]
	group   singleflight.Group
	logger  zerolog.Logger
}

func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, logger: logger.With().Str("component", "diseases").Logger()}
}

// NewStaticStore serves fixed entries without touching disk.
func NewStaticStore(entries []Entry) *Store {
	s := &Store{logger: zerolog.Nop()}
	s.current.Store(&Snapshot{Entries: entries, LoadedAt: time.Now()})
	return s
}

// Snapshot returns the loaded data, reading the file on first use.
// Concurrent first callers share a single read. A failed load is not cached.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	v, err, _ := s.group.Do("load", func() (any, error) {
		if snap := s.current.Load(); snap != nil {
			return snap, nil
		}
		snap, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		s.current.Store(snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Reload re-reads the file and atomically replaces the current snapshot.
// On failure the previous snapshot stays in place.
func (s *Store) Reload(ctx context.Context) error {
	v, err, _ := s.group.Do("load", func() (any, error) {
		snap, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		s.current.Store(snap)
		return snap, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info().Int("entries", len(v.(*Snapshot).Entries)).Msg("diseases.reloaded")
	return nil
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.path) == "" {
		return nil, fmt.Errorf("no cache path configured: %w", ErrUnavailable)
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", s.path, err, ErrUnavailable)
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", s.path, err, ErrUnavailable)
	}
	return &Snapshot{Entries: entries, LoadedAt: time.Now()}, nil
}

// Top returns the first n entries in file order, which is rank order.
func (s *Store) Top(ctx context.Context, n int) ([]Entry, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > len(snap.Entries) {
		n = len(snap.Entries)
	}
	out := make([]Entry, n)
	copy(out, snap.Entries[:n])
	return out, nil
}

// PromptContext renders the top entries for a system prompt, or the
// unavailable notice.
func (s *Store) PromptContext(ctx context.Context) string {
	entries, err := s.Top(ctx, TopN)
	if err != nil {
		s.logger.Warn().Err(err).Msg("diseases.context.unavailable")
		return UnavailableContext
	}
	return FormatContext(entries)
}
