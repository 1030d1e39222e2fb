package session

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/dayflow/internal/errors"
)

// Store persists session state between process restarts.
type Store interface {
	// Load returns the saved state, or an empty *State when nothing usable
	// is persisted. A corrupt file is an error, not silent data loss.
	Load() (*State, error)
	Save(state *State) error
}

// storeVersion is bumped on incompatible State layout changes. Unknown
// versions load as empty state rather than misreading old payloads.
const storeVersion = 1

// envelope wraps the persisted payload with a version tag and a BLAKE3
// checksum so truncated or hand-edited files are detected on load.
type envelope struct {
	Version  int             `json:"version"`
	Checksum string          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

// FileStore persists session state as a checksummed JSON envelope at a fixed
// path.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path. Parent directories are
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store.
func (s *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Phase: NoSchedule}, nil
		}
		return nil, fmt.Errorf("read session state: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.NewSessionStoreCorruptError(s.path).WithCause(err)
	}

	if env.Version != storeVersion {
		return &State{Phase: NoSchedule}, nil
	}

	// The envelope is written indented, which reformats the embedded raw
	// payload. The checksum covers the compact form, so compact before
	// comparing.
	var compact bytes.Buffer
	if err := json.Compact(&compact, env.Payload); err != nil {
		return nil, errors.NewSessionStoreCorruptError(s.path).WithCause(err)
	}
	sum := blake3.Sum256(compact.Bytes())
	if hex.EncodeToString(sum[:]) != env.Checksum {
		return nil, errors.NewSessionStoreCorruptError(s.path)
	}

	var state State
	if err := json.Unmarshal(env.Payload, &state); err != nil {
		return nil, errors.NewSessionStoreCorruptError(s.path).WithCause(err)
	}
	return &state, nil
}

// Save implements Store. The write is atomic: a temp file is renamed over
// the target so a crash never leaves a half-written envelope.
func (s *FileStore) Save(state *State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	sum := blake3.Sum256(payload)
	env := envelope{
		Version:  storeVersion,
		Checksum: hex.EncodeToString(sum[:]),
		Payload:  payload,
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session state: %w", err)
	}
	return nil
}

// MemoryStore keeps state in memory, for tests and ephemeral sessions.
type MemoryStore struct {
	state *State
	saves int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load() (*State, error) {
	if s.state == nil {
		return &State{Phase: NoSchedule}, nil
	}
	snapshot := *s.state
	return &snapshot, nil
}

// Save implements Store.
func (s *MemoryStore) Save(state *State) error {
	snapshot := *state
	s.state = &snapshot
	s.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (s *MemoryStore) Saves() int { return s.saves }
