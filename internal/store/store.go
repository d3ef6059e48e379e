// Package store reads and writes the saved commands file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/runger/ssm-commander/internal/ssm"
)

// FileVersion is written to new commands files.
const FileVersion = "1.0"

var (
	// ErrNotFound is returned when no command has the requested name.
	ErrNotFound = errors.New("command not found")
	// ErrDuplicateName is returned when adding a command whose name is taken.
	ErrDuplicateName = errors.New("command name already exists")
)

// File is the on-disk document.
type File struct {
	Version  string        `json:"version"`
	Commands []ssm.Command `json:"commands"`
}

// Store gives access to the commands file at one path.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a store backed by path. The file is created on first Load.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the file, creating an empty one if it does not exist yet.
func (s *Store) Load() (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*File, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read commands file: %w", err)
		}
		f := &File{Version: FileVersion, Commands: []ssm.Command{}}
		if err := s.write(f); err != nil {
			return nil, err
		}
		return f, nil
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse commands file %s: %w", s.path, err)
	}
	if f.Commands == nil {
		f.Commands = []ssm.Command{}
	}
	return &f, nil
}

// List returns every saved command in file order.
func (s *Store) List() ([]ssm.Command, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}
	return f.Commands, nil
}

// Find returns the command with the given name.
func (s *Store) Find(name string) (*ssm.Command, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range f.Commands {
		if f.Commands[i].Name == name {
			return &f.Commands[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Exists reports whether a command with the given name is saved.
func (s *Store) Exists(name string) (bool, error) {
	_, err := s.Find(name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Add appends cmd. Names are unique.
func (s *Store) Add(cmd ssm.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	for _, c := range f.Commands {
		if c.Name == cmd.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateName, cmd.Name)
		}
	}
	f.Commands = append(f.Commands, cmd)
	return s.write(f)
}

// Delete removes the command with the given name.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	kept := f.Commands[:0]
	for _, c := range f.Commands {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(f.Commands) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	f.Commands = kept
	return s.write(f)
}

// write replaces the file atomically.
func (s *Store) write(f *File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create commands directory: %w", err)
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal commands: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write commands file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write commands file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace commands file: %w", err)
	}
	return nil
}
