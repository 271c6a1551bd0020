package sketchfab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultAuthorizeURL = "https://sketchfab.com/oauth2/authorize/"
	DefaultTokenURL     = "https://sketchfab.com/oauth2/token/"
	DefaultAPIBaseURL   = "https://api.sketchfab.com/v3"

	// ModelFileField is the multipart field name the Sketchfab models
	// endpoint expects the binary under.
	ModelFileField = "modelFile"

	DefaultFilename    = "upload.obj"
	DefaultContentType = "application/octet-stream"

	defaultTimeout = 30 * time.Second
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Endpoint overrides for tests; production uses the defaults.
	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string

	Scopes  []string
	Timeout time.Duration
}

// Client talks to the Sketchfab OAuth and model endpoints. Every call is
// bounded by the configured timeout and is attempted exactly once: failures
// surface to the caller immediately, retry policy belongs to the client app.
type Client struct {
	cfg        Config
	oauth      *oauth2.Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"all"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthorizeURL,
				TokenURL: cfg.TokenURL,
			},
		},
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// AuthorizeURL builds the browser redirect target for the authorization-code
// flow. No network traffic and no side effects.
func (c *Client) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a token body. The token POST
// is done by hand rather than through oauth2.Config.Exchange: the callback
// handler needs the raw upstream body on failure and has to tell a transport
// failure apart from a 200-with-error-field soft rejection, and the oauth2
// package flattens both into one error.
func (c *Client) ExchangeCode(ctx context.Context, code string) (map[string]any, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		// Sketchfab requires the exact redirect URI the authorize step used.
		"redirect_uri": {c.cfg.RedirectURI},
	}
	return c.tokenRequest(ctx, "token exchange", form)
}

// RefreshToken trades a refresh token for a new token body. The body may be
// partial (access token only); the store's merge upsert handles that.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (map[string]any, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}
	return c.tokenRequest(ctx, "token refresh", form)
}

func (c *Client) tokenRequest(ctx context.Context, op string, form url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := c.do(req, op)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &UpstreamError{Op: op, StatusCode: status, Body: body}
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, &ProtocolError{Op: op, Body: body}
	}
	if errCode, ok := parsed["error"].(string); ok && errCode != "" {
		desc, _ := parsed["error_description"].(string)
		return nil, &RejectedError{Code: errCode, Description: desc}
	}
	if tok, _ := parsed["access_token"].(string); tok == "" {
		return nil, &ProtocolError{Op: op, Body: body}
	}
	return parsed, nil
}

// Upload is one model create request: the binary plus caller-supplied
// metadata fields, copied through to Sketchfab verbatim.
type Upload struct {
	File        io.Reader
	Filename    string
	ContentType string
	Fields      map[string]string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// CreateModel uploads a model and returns Sketchfab's parsed response, which
// carries the remote model uid.
func (c *Client) CreateModel(ctx context.Context, accessToken string, up Upload) (map[string]any, error) {
	filename := up.Filename
	if filename == "" {
		filename = DefaultFilename
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="%s"`,
		ModelFileField, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, up.File); err != nil {
		return nil, err
	}
	for key, value := range up.Fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBaseURL+"/models", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)

	status, body, err := c.do(req, "upload")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &UpstreamError{Op: "upload", StatusCode: status, Body: body}
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, &ProtocolError{Op: "upload", Body: body}
	}
	if RemoteModelID(parsed) == "" {
		return nil, &ProtocolError{Op: "upload", Body: body}
	}
	return parsed, nil
}

// UpdateModel patches model metadata. Sketchfab may answer 204 with an empty
// body; that is success with a nil map, not a parse failure.
func (c *Client) UpdateModel(ctx context.Context, accessToken, modelID string, patch map[string]any) (map[string]any, error) {
	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.modelURL(modelID), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	status, body, err := c.do(req, "update")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &UpstreamError{Op: "update", StatusCode: status, Body: body}
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, nil
	}
	return parsed, nil
}

// DeleteModel removes a model upstream.
func (c *Client) DeleteModel(ctx context.Context, accessToken, modelID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.modelURL(modelID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	status, body, err := c.do(req, "delete")
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &UpstreamError{Op: "delete", StatusCode: status, Body: body}
	}
	return nil
}

func (c *Client) modelURL(modelID string) string {
	return c.cfg.APIBaseURL + "/models/" + url.PathEscape(modelID)
}

// do runs the request and reads the full body. Connection errors and
// timeouts come back as UpstreamError so handlers map them like any other
// upstream failure.
func (c *Client) do(req *http.Request, op string) (int, string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", &UpstreamError{Op: op, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", &UpstreamError{Op: op, Body: err.Error()}
	}
	return resp.StatusCode, string(body), nil
}

// RemoteModelID pulls the model identifier out of a parsed upstream body.
func RemoteModelID(body map[string]any) string {
	id, _ := body["uid"].(string)
	return id
}
