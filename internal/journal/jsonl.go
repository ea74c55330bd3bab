package journal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// JSONLStore writes one shard per session: <dir>/events.<session>.jsonl.
type JSONLStore struct {
	dir string
}

func OpenJSONL(dir string) (*JSONLStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &JSONLStore{dir: dir}, nil
}

func (s *JSONLStore) shardPath(sessionID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("events.%s.jsonl", strings.TrimSpace(sessionID)))
}

func (s *JSONLStore) Append(_ context.Context, ev Event) error {
	if err := validate(ev); err != nil {
		return err
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(s.shardPath(ev.SessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *JSONLStore) shards() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if !strings.HasPrefix(name, "events") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		names = append(names, filepath.Join(s.dir, name))
	}
	sort.Strings(names)
	return names, nil
}

func readShard(path string) ([]Event, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []Event
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
		out = append(out, ev)
	}
	return out, sc.Err()
}

func (s *JSONLStore) all() ([]Event, error) {
	paths, err := s.shards()
	if err != nil {
		return nil, err
	}
	var out []Event
	for _, p := range paths {
		evs, err := readShard(p)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	sortEvents(out)
	return out, nil
}

func (s *JSONLStore) List(_ context.Context, f Filter) ([]Event, error) {
	evs, err := s.all()
	if err != nil {
		return nil, err
	}
	out := []Event{}
	for _, ev := range evs {
		if f.match(ev) {
			out = append(out, ev)
		}
	}
	return applyLimit(out, f.Limit), nil
}

func (s *JSONLStore) Sessions(_ context.Context) ([]SessionInfo, error) {
	evs, err := s.all()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	out := []SessionInfo{}
	for _, ev := range evs {
		i, ok := idx[ev.SessionID]
		if !ok {
			idx[ev.SessionID] = len(out)
			out = append(out, SessionInfo{SessionID: ev.SessionID, StartedAt: ev.IssuedAt})
			i = len(out) - 1
		}
		out[i].Events++
	}
	return out, nil
}

func (s *JSONLStore) Close() error { return nil }

func hasJSONLEvents(dir string) bool {
	s := JSONLStore{dir: dir}
	names, err := s.shards()
	return err == nil && len(names) > 0
}
