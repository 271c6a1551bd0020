package model

// TokenRecord holds the OAuth credential returned by the Sketchfab token
// endpoint for one user. The upstream body is kept verbatim so fields we do
// not know about survive merge upserts.
type TokenRecord map[string]any

func (t TokenRecord) stringField(key string) string {
	v, ok := t[key].(string)
	if !ok {
		return ""
	}
	return v
}

func (t TokenRecord) AccessToken() string { return t.stringField("access_token") }

func (t TokenRecord) RefreshToken() string { return t.stringField("refresh_token") }

func (t TokenRecord) TokenType() string { return t.stringField("token_type") }

func (t TokenRecord) Scope() string { return t.stringField("scope") }

// Clone returns a shallow copy so callers cannot mutate stored state.
func (t TokenRecord) Clone() TokenRecord {
	if t == nil {
		return nil
	}
	out := make(TokenRecord, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Artifact mirrors one successfully uploaded Sketchfab model. The mirror is
// bookkeeping for listing and ownership; Sketchfab stays the source of truth.
type Artifact struct {
	ID            string         `json:"id"`
	Owner         string         `json:"owner"`
	RemoteModelID string         `json:"remoteModelId"`
	Title         string         `json:"title"`
	CreatedAt     int64          `json:"createdAt"`
	Metadata      map[string]any `json:"metadata"`
}
