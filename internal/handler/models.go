package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"sketchfab-proxy/internal/middleware"
	"sketchfab-proxy/internal/sketchfab"
	"sketchfab-proxy/internal/store"
)

// ModelHandler proxies model create/update/delete calls to Sketchfab with
// the caller's stored token and keeps the artifact mirror in step.
type ModelHandler struct {
	Store  *store.Store
	Client *sketchfab.Client
}

// requireToken resolves the caller's stored access token. A user who never
// linked an account gets 403: "action needed", not a hard failure.
func (h *ModelHandler) requireToken(c *gin.Context) (uid, accessToken string, ok bool) {
	uid, ok = middleware.UIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid id token"})
		return "", "", false
	}

	rec, found := h.Store.GetToken(uid)
	if !found || rec.AccessToken() == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "No Sketchfab token for user. Please connect your account."})
		return "", "", false
	}
	return uid, rec.AccessToken(), true
}

func (h *ModelHandler) Upload(c *gin.Context) {
	uid, accessToken, ok := h.requireToken(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(sketchfab.ModelFileField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	upload := sketchfab.Upload{
		File:        file,
		Filename:    c.PostForm("filename"),
		ContentType: fileHeader.Header.Get("Content-Type"),
		Fields:      scalarFields(c),
	}
	if upload.Filename == "" {
		upload.Filename = fileHeader.Filename
	}

	parsed, err := h.Client.CreateModel(c.Request.Context(), accessToken, upload)
	if err != nil {
		writeUpstreamError(c, err)
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title, _ = parsed["title"].(string)
	}
	if _, err := h.Store.AddArtifact(uid, sketchfab.RemoteModelID(parsed), title, parsed, time.Now().UnixMilli()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload succeeded but recording the artifact failed"})
		return
	}

	c.JSON(http.StatusOK, parsed)
}

// scalarFields copies every multipart value field through to Sketchfab
// verbatim, except filename, which only shapes the file part.
func scalarFields(c *gin.Context) map[string]string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	fields := make(map[string]string)
	for key, values := range form.Value {
		if key == "filename" || len(values) == 0 {
			continue
		}
		fields[key] = values[0]
	}
	return fields
}

func (h *ModelHandler) Update(c *gin.Context) {
	_, accessToken, ok := h.requireToken(c)
	if !ok {
		return
	}
	modelID := c.Param("modelId")

	patch := map[string]any{}
	if c.Request.Body != nil {
		if err := c.ShouldBindJSON(&patch); err != nil && err != io.EOF {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	parsed, err := h.Client.UpdateModel(c.Request.Context(), accessToken, modelID, patch)
	if err != nil {
		writeUpstreamError(c, err)
		return
	}
	if parsed == nil {
		// Sketchfab answers 204 on metadata patches.
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Model " + modelID + " updated."})
		return
	}
	c.JSON(http.StatusOK, parsed)
}

func (h *ModelHandler) Delete(c *gin.Context) {
	_, accessToken, ok := h.requireToken(c)
	if !ok {
		return
	}
	modelID := c.Param("modelId")

	if err := h.Client.DeleteModel(c.Request.Context(), accessToken, modelID); err != nil {
		writeUpstreamError(c, err)
		return
	}

	// Zero matches is fine; the mirror is not the source of truth.
	h.Store.DeleteArtifactsByRemoteModelID(modelID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Artworks lists the caller's mirrored uploads so the client app can render
// "my models" without a round-trip to Sketchfab.
func (h *ModelHandler) Artworks(c *gin.Context) {
	uid, ok := middleware.UIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid id token"})
		return
	}

	artifacts := h.Store.ListArtifacts(uid)
	resp := make([]gin.H, 0, len(artifacts))
	for _, a := range artifacts {
		resp = append(resp, gin.H{
			"id":            a.ID,
			"remoteModelId": a.RemoteModelID,
			"title":         a.Title,
			"createdAt":     a.CreatedAt,
			"metadata":      a.Metadata,
		})
	}
	c.JSON(http.StatusOK, resp)
}
