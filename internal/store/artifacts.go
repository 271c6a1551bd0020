package store

import (
	"errors"
	"log"
	"sort"

	"github.com/google/uuid"
	"sketchfab-proxy/internal/model"
)

// AddArtifact records one mirror entry for a model that was just created
// upstream.
func (s *Store) AddArtifact(owner, remoteModelID, title string, metadata map[string]any, nowMillis int64) (model.Artifact, error) {
	if owner == "" {
		return model.Artifact{}, errors.New("missing owner")
	}
	if remoteModelID == "" {
		return model.Artifact{}, errors.New("missing remote model id")
	}

	a := model.Artifact{
		ID:            uuid.NewString(),
		Owner:         owner,
		RemoteModelID: remoteModelID,
		Title:         title,
		CreatedAt:     nowMillis,
		Metadata:      metadata,
	}

	s.mu.Lock()
	s.artifactsByID[a.ID] = a
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.persistSnapshot(snap); err != nil {
		return model.Artifact{}, err
	}
	return a, nil
}

// ListArtifacts returns the owner's mirror entries, newest first.
func (s *Store) ListArtifacts(owner string) []model.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Artifact, 0)
	for _, a := range s.artifactsByID {
		if a.Owner == owner {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt == result[j].CreatedAt {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt > result[j].CreatedAt
	})
	return result
}

// DeleteArtifactsByRemoteModelID removes every mirror entry for the given
// upstream model, defensive against duplicate mirrors of the same model.
// Zero matches is not an error; the mirror is best-effort bookkeeping, so a
// persistence failure here is logged rather than surfaced.
func (s *Store) DeleteArtifactsByRemoteModelID(remoteModelID string) int {
	if remoteModelID == "" {
		return 0
	}

	s.mu.Lock()
	removed := 0
	for id, a := range s.artifactsByID {
		if a.RemoteModelID == remoteModelID {
			delete(s.artifactsByID, id)
			removed++
		}
	}
	var snap persistedState
	if removed > 0 {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if removed > 0 {
		if err := s.persistSnapshot(snap); err != nil {
			log.Printf("store: persist after artifact delete failed: %v", err)
		}
	}
	return removed
}
