// Package journal keeps an append-only record of activity log events so a
// session's history can be reviewed after the editor exits.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Backend selection. The env var wins over the configured value.
const envJournalBackend = "IMGEDIT_JOURNAL"

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSONL  Backend = "jsonl"
	BackendOff    Backend = "off"
)

// Event types.
const (
	TypeImageOpened    = "image.opened"
	TypeImageSaved     = "image.saved"
	TypeLogAdded       = "log.added"
	TypeLogRenamed     = "log.renamed"
	TypeLogDeleted     = "log.deleted"
	TypeLogEvicted     = "log.evicted"
	TypeHistoryUndo    = "history.undo"
	TypeHistoryRedo    = "history.redo"
	TypeHistoryRemoved = "history.removed"
)

type Event struct {
	EventID   string          `json:"eventId"`
	SessionID string          `json:"sessionId"`
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	NodeID    string          `json:"nodeId,omitempty"`
	Label     string          `json:"label,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	IssuedAt  time.Time       `json:"issuedAt"`
}

type SessionInfo struct {
	SessionID string    `json:"sessionId"`
	StartedAt time.Time `json:"startedAt"`
	Events    int       `json:"events"`
}

type Filter struct {
	SessionID string
	Type      string
	// Limit keeps the newest n events; 0 means no limit.
	Limit int
}

func (f Filter) match(ev Event) bool {
	if f.SessionID != "" && ev.SessionID != f.SessionID {
		return false
	}
	if f.Type != "" && ev.Type != f.Type {
		return false
	}
	return true
}

// Store is a journal backend.
type Store interface {
	Append(ctx context.Context, ev Event) error
	List(ctx context.Context, f Filter) ([]Event, error)
	Sessions(ctx context.Context) ([]SessionInfo, error)
	Close() error
}

var errInvalidEvent = errors.New("invalid journal event")

func validate(ev Event) error {
	switch {
	case strings.TrimSpace(ev.EventID) == "":
		return fmt.Errorf("%w: missing event id", errInvalidEvent)
	case strings.TrimSpace(ev.SessionID) == "":
		return fmt.Errorf("%w: missing session id", errInvalidEvent)
	case strings.TrimSpace(ev.Type) == "":
		return fmt.Errorf("%w: missing type", errInvalidEvent)
	}
	return nil
}

// ResolveBackend picks the backend from the environment, then configured,
// then auto-detects: an existing JSONL directory wins, otherwise SQLite.
func ResolveBackend(configured, dir string) Backend {
	for _, v := range []string{os.Getenv(envJournalBackend), configured} {
		switch Backend(strings.ToLower(strings.TrimSpace(v))) {
		case BackendSQLite:
			return BackendSQLite
		case BackendJSONL:
			return BackendJSONL
		case BackendOff:
			return BackendOff
		}
	}
	if hasJSONLEvents(filepath.Join(dir, "journal")) {
		return BackendJSONL
	}
	return BackendSQLite
}

// Open opens the journal stored under dir.
func Open(ctx context.Context, backend Backend, dir string) (Store, error) {
	switch backend {
	case BackendSQLite:
		st, err := OpenSQLite(ctx, filepath.Join(dir, "journal.sqlite"))
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendJSONL:
		st, err := OpenJSONL(filepath.Join(dir, "journal"))
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendOff:
		return Nop{}, nil
	}
	return nil, fmt.Errorf("unknown journal backend: %q", backend)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Append(context.Context, Event) error { return nil }
func (Nop) List(context.Context, Filter) ([]Event, error) { return []Event{}, nil }
func (Nop) Sessions(context.Context) ([]SessionInfo, error) { return []SessionInfo{}, nil }
func (Nop) Close() error { return nil }

// Session stamps events with one session id and a running sequence number.
type Session struct {
	ID    string
	store Store
	seq   int64
	now   func() time.Time
}

func NewSession(store Store) *Session {
	if store == nil {
		store = Nop{}
	}
	return &Session{ID: uuid.NewString(), store: store, now: time.Now}
}

func (s *Session) Store() Store { return s.store }

// Record appends an event of type typ. payload may be nil.
func (s *Session) Record(ctx context.Context, typ, nodeID, label string, payload any) error {
	if s == nil {
		return nil
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = b
	}
	s.seq++
	return s.store.Append(ctx, Event{
		EventID:   uuid.NewString(),
		SessionID: s.ID,
		Seq:       s.seq,
		Type:      typ,
		NodeID:    nodeID,
		Label:     label,
		Payload:   raw,
		IssuedAt:  s.now().UTC(),
	})
}

func sortEvents(evs []Event) {
	sort.SliceStable(evs, func(i, j int) bool {
		if !evs[i].IssuedAt.Equal(evs[j].IssuedAt) {
			return evs[i].IssuedAt.Before(evs[j].IssuedAt)
		}
		if evs[i].SessionID != evs[j].SessionID {
			return evs[i].SessionID < evs[j].SessionID
		}
		return evs[i].Seq < evs[j].Seq
	})
}

func applyLimit(evs []Event, limit int) []Event {
	if limit > 0 && len(evs) > limit {
		return evs[len(evs)-limit:]
	}
	return evs
}
