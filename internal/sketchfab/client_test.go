package sketchfab

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func testClient(tokenURL, apiBaseURL string) *Client {
	return NewClient(Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURI:  "https://proxy.example.com/api/sketchfab/auth/callback",
		TokenURL:     tokenURL,
		APIBaseURL:   apiBaseURL,
		Timeout:      2 * time.Second,
	})
}

func TestAuthorizeURL(t *testing.T) {
	c := testClient("", "")
	raw := c.AuthorizeURL("signed-state")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse authorize URL: %v", err)
	}
	q := u.Query()
	if q.Get("response_type") != "code" {
		t.Fatalf("expected response_type=code, got %q", q.Get("response_type"))
	}
	if q.Get("client_id") != "cid" {
		t.Fatalf("expected client_id=cid, got %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "https://proxy.example.com/api/sketchfab/auth/callback" {
		t.Fatalf("unexpected redirect_uri %q", q.Get("redirect_uri"))
	}
	if q.Get("scope") != "all" {
		t.Fatalf("expected scope=all, got %q", q.Get("scope"))
	}
	if q.Get("state") != "signed-state" {
		t.Fatalf("expected state passthrough, got %q", q.Get("state"))
	}
}

func TestExchangeCode_Success(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"T","refresh_token":"R","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	body, err := c.ExchangeCode(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if body["access_token"] != "T" {
		t.Fatalf("expected access_token T, got %v", body["access_token"])
	}

	if gotForm.Get("grant_type") != "authorization_code" {
		t.Fatalf("expected grant_type authorization_code, got %q", gotForm.Get("grant_type"))
	}
	if gotForm.Get("code") != "code-1" {
		t.Fatalf("expected code code-1, got %q", gotForm.Get("code"))
	}
	if gotForm.Get("client_secret") != "csecret" {
		t.Fatalf("expected client secret in form")
	}
	if gotForm.Get("redirect_uri") != "https://proxy.example.com/api/sketchfab/auth/callback" {
		t.Fatalf("expected exact redirect_uri, got %q", gotForm.Get("redirect_uri"))
	}
}

func TestExchangeCode_SoftError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	_, err := c.ExchangeCode(context.Background(), "code-1")

	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if rejected.Code != "invalid_grant" {
		t.Fatalf("expected invalid_grant, got %q", rejected.Code)
	}
}

func TestExchangeCode_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	_, err := c.ExchangeCode(context.Background(), "code-1")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", upstream.StatusCode)
	}
	if !strings.Contains(err.Error(), "upstream exploded") {
		t.Fatalf("expected upstream body in error, got %q", err.Error())
	}
}

func TestExchangeCode_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	_, err := c.ExchangeCode(context.Background(), "code-1")

	var protocol *ProtocolError
	if !errors.As(err, &protocol) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestExchangeCode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"access_token":"T"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURI:  "https://proxy.example.com/cb",
		TokenURL:     srv.URL,
		Timeout:      20 * time.Millisecond,
	})
	_, err := c.ExchangeCode(context.Background(), "code-1")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError for timeout, got %v", err)
	}
}

func TestRefreshToken_Form(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = r.PostForm
		w.Write([]byte(`{"access_token":"T2"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	body, err := c.RefreshToken(context.Background(), "R1")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if body["access_token"] != "T2" {
		t.Fatalf("expected access_token T2, got %v", body["access_token"])
	}
	if gotForm.Get("grant_type") != "refresh_token" || gotForm.Get("refresh_token") != "R1" {
		t.Fatalf("unexpected refresh form: %v", gotForm)
	}
}

func TestCreateModel_ForwardsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer T" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile(ModelFileField)
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "scene.glb" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "model/gltf-binary" {
			t.Errorf("unexpected content type %q", ct)
		}
		if r.FormValue("title") != "My Scene" {
			t.Errorf("unexpected title %q", r.FormValue("title"))
		}
		if r.FormValue("tags") != "ar" {
			t.Errorf("unexpected tags %q", r.FormValue("tags"))
		}
		w.Write([]byte(`{"uid":"m1","title":"My Scene"}`))
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	body, err := c.CreateModel(context.Background(), "T", Upload{
		File:        strings.NewReader("binary-bytes"),
		Filename:    "scene.glb",
		ContentType: "model/gltf-binary",
		Fields:      map[string]string{"title": "My Scene", "tags": "ar"},
	})
	if err != nil {
		t.Fatalf("CreateModel: %v", err)
	}
	if RemoteModelID(body) != "m1" {
		t.Fatalf("expected remote model id m1, got %q", RemoteModelID(body))
	}
}

func TestCreateModel_Defaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		_, header, err := r.FormFile(ModelFileField)
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		if header.Filename != DefaultFilename {
			t.Errorf("expected default filename, got %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != DefaultContentType {
			t.Errorf("expected default content type, got %q", ct)
		}
		w.Write([]byte(`{"uid":"m1"}`))
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	if _, err := c.CreateModel(context.Background(), "T", Upload{File: strings.NewReader("x")}); err != nil {
		t.Fatalf("CreateModel: %v", err)
	}
}

func TestCreateModel_UnparseableResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	_, err := c.CreateModel(context.Background(), "T", Upload{File: strings.NewReader("x")})

	var protocol *ProtocolError
	if !errors.As(err, &protocol) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestUpdateModel_EmptyBodySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.URL.Path != "/models/m1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	body, err := c.UpdateModel(context.Background(), "T", "m1", map[string]any{"title": "new"})
	if err != nil {
		t.Fatalf("UpdateModel: %v", err)
	}
	if body != nil {
		t.Fatalf("expected nil body for 204, got %v", body)
	}
}

func TestUpdateModel_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	_, err := c.UpdateModel(context.Background(), "T", "m1", map[string]any{"title": "new"})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", upstream.StatusCode)
	}
}

func TestDeleteModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if r.URL.Path != "/models/m1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	if err := c.DeleteModel(context.Background(), "T", "m1"); err != nil {
		t.Fatalf("DeleteModel: %v", err)
	}
}

func TestDeleteModel_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "missing model", http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	err := c.DeleteModel(context.Background(), "T", "m1")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing model") {
		t.Fatalf("expected upstream body in error, got %q", err.Error())
	}
}
