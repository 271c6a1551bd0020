package store

import (
	"errors"

	"sketchfab-proxy/internal/model"
)

// UpsertToken merges fields into the token record for uid. Fields present in
// the new body overwrite same-named stored fields; stored fields absent from
// the body survive, so a refresh response carrying only a new access token
// does not wipe the refresh token.
func (s *Store) UpsertToken(uid string, fields map[string]any) (model.TokenRecord, error) {
	if uid == "" {
		return nil, errors.New("missing uid")
	}
	if len(fields) == 0 {
		return nil, errors.New("empty token body")
	}

	s.mu.Lock()
	rec := s.tokensByUID[uid].Clone()
	if rec == nil {
		rec = make(model.TokenRecord, len(fields))
	}
	for k, v := range fields {
		rec[k] = v
	}
	s.tokensByUID[uid] = rec
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.persistSnapshot(snap); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// GetToken returns the stored record for uid, or false if the user has never
// linked a Sketchfab account.
func (s *Store) GetToken(uid string) (model.TokenRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tokensByUID[uid]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}
