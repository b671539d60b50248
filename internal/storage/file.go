package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// FileStore keeps the exchange sequence in one pretty-printed JSON array.
// Every Save truncates and rewrites the file; there is no atomic rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("history file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history dir: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() ([]Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUnlocked()
}

func (s *FileStore) loadUnlocked() ([]Exchange, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Exchange{}, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	return Decode(data)
}

// Decode parses the on-disk representation. Blank input is an empty sequence.
func Decode(data []byte) ([]Exchange, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Exchange{}, nil
	}
	if !gjson.ValidBytes(data) {
		return []Exchange{}, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return []Exchange{}, fmt.Errorf("%w: top-level value is %s, want array", ErrMalformed, root.Type)
	}
	items := root.Array()
	out := make([]Exchange, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return []Exchange{}, fmt.Errorf("%w: entry %d is not an object", ErrMalformed, i)
		}
		user, ai := item.Get("user"), item.Get("ai")
		if (user.Exists() && user.Type != gjson.String) || (ai.Exists() && ai.Type != gjson.String) {
			return []Exchange{}, fmt.Errorf("%w: entry %d has non-string fields", ErrMalformed, i)
		}
		out = append(out, Exchange{User: user.String(), AI: ai.String()})
	}
	return out, nil
}

func (s *FileStore) Save(exchanges []Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := Encode(exchanges)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Encode renders the sequence as a two-space indented UTF-8 JSON array.
// Non-ASCII text and HTML characters are written verbatim.
func Encode(exchanges []Exchange) ([]byte, error) {
	if exchanges == nil {
		exchanges = []Exchange{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exchanges); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Quarantine moves an unreadable history file aside so that the next Save
// cannot overwrite it. It returns the new location.
func (s *FileStore) Quarantine(now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst := fmt.Sprintf("%s.corrupt-%s", s.path, now.UTC().Format("20060102-150405"))
	if err := os.Rename(s.path, dst); err != nil {
		return "", fmt.Errorf("quarantine history: %w", err)
	}
	return dst, nil
}

// Backup copies the current history file into dir. A missing history file
// produces no backup and an empty path.
func (s *FileStore) Backup(dir string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("open history: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(src)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backup dir: %w", err)
	}
	name := fmt.Sprintf("chat_history-%s.json", now.UTC().Format("20060102-150405"))
	dst := filepath.Join(dir, name)
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("copy backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}
	return dst, nil
}
