package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"sketchfab-proxy/internal/model"
)

// Store holds the two collections this service owns: Sketchfab token records
// keyed by uid, and the artifact mirror of uploaded models. An optional state
// file makes both survive restarts.
type Store struct {
	mu sync.RWMutex

	stateFile string
	persistMu sync.Mutex

	tokensByUID   map[string]model.TokenRecord
	artifactsByID map[string]model.Artifact
}

type Options struct {
	StateFile string
}

func New() *Store {
	return NewWithOptions(Options{})
}

func NewWithOptions(opts Options) *Store {
	s := &Store{
		tokensByUID:   make(map[string]model.TokenRecord),
		artifactsByID: make(map[string]model.Artifact),
		stateFile:     opts.StateFile,
	}

	if s.stateFile != "" {
		if err := s.loadFromFile(s.stateFile); err != nil {
			log.Printf("store: load failed (%s): %v", s.stateFile, err)
		}
	}

	return s
}

type persistedState struct {
	Version   int                          `json:"version"`
	Tokens    map[string]model.TokenRecord `json:"tokens"`
	Artifacts []model.Artifact             `json:"artifacts"`
	SavedAt   int64                        `json:"savedAt"`
}

func (s *Store) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var file persistedState
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	if file.Version != 1 {
		return errors.New("unsupported state version")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for uid, rec := range file.Tokens {
		if uid == "" || rec == nil {
			continue
		}
		s.tokensByUID[uid] = rec
	}
	for _, a := range file.Artifacts {
		if a.ID == "" || a.Owner == "" {
			continue
		}
		s.artifactsByID[a.ID] = a
	}
	return nil
}

func (s *Store) snapshotLocked() persistedState {
	tokens := make(map[string]model.TokenRecord, len(s.tokensByUID))
	for uid, rec := range s.tokensByUID {
		tokens[uid] = rec.Clone()
	}
	artifacts := make([]model.Artifact, 0, len(s.artifactsByID))
	for _, a := range s.artifactsByID {
		artifacts = append(artifacts, a)
	}
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].ID < artifacts[j].ID })
	return persistedState{Version: 1, Tokens: tokens, Artifacts: artifacts}
}

// persistSnapshot writes the state file atomically. Unlike a log-and-forget
// persistence layer, failures are returned: losing a freshly exchanged token
// must not look like a successful account link.
func (s *Store) persistSnapshot(snap persistedState) error {
	path := s.stateFile
	if path == "" {
		return nil
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	snap.SavedAt = time.Now().UnixMilli()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
