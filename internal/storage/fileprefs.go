package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// DefaultPrefsName is the base name of the preferences file.
const DefaultPrefsName = "todo_prefs"

// errCorruptPreferences marks a preferences file that exists but cannot be parsed.
var errCorruptPreferences = errors.New("corrupt preferences file")

// filePreferences keeps every key in a single YAML mapping. A sibling .lock
// file serializes access between processes.
type filePreferences struct {
	path string
	lock *flock.Flock
}

// NewFilePreferences creates a Preferences backed by <dir>/<name>.yaml.
// The directory is created if needed; the file itself is created on first Put.
func NewFilePreferences(dir, name string) (Preferences, error) {
	if name == "" {
		name = DefaultPrefsName
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating preferences directory: %w", err)
	}
	path := filepath.Join(dir, name+".yaml")
	return &filePreferences{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (p *filePreferences) Get(key string) (string, bool, error) {
	if err := p.lock.RLock(); err != nil {
		return "", false, fmt.Errorf("locking preferences: %w", err)
	}
	defer func() { _ = p.lock.Unlock() }()

	values, err := p.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (p *filePreferences) Put(key, value string) error {
	if err := p.lock.Lock(); err != nil {
		return fmt.Errorf("locking preferences: %w", err)
	}
	defer func() { _ = p.lock.Unlock() }()

	values, err := p.read()
	if err != nil && !errors.Is(err, errCorruptPreferences) {
		return err
	}
	// A corrupt file is replaced rather than blocking every future write.
	if values == nil {
		values = make(map[string]string)
	}
	values[key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("saving preferences: marshaling YAML: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("saving preferences: writing file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("saving preferences: replacing file: %w", err)
	}
	return nil
}

func (p *filePreferences) Close() error { return nil }

// read must be called with the lock held.
func (p *filePreferences) read() (map[string]string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("loading preferences: %w", err)
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("loading preferences: %w: %v", errCorruptPreferences, err)
	}
	return values, nil
}
