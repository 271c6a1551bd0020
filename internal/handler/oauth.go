package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"sketchfab-proxy/internal/auth"
	"sketchfab-proxy/internal/middleware"
	"sketchfab-proxy/internal/sketchfab"
	"sketchfab-proxy/internal/store"
)

type OAuthHandler struct {
	Store        *store.Store
	Client       *sketchfab.Client
	StateSecret  string
	ClientAppURL string
}

// Start builds the Sketchfab authorize URL for the caller. The uid bound
// into state comes from the verified identity token, never from the request
// body, so a caller cannot start a flow on someone else's behalf.
func (h *OAuthHandler) Start(c *gin.Context) {
	uid, ok := middleware.UIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid id token"})
		return
	}

	state, err := auth.EncodeState(uid, h.StateSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authorizeUrl": h.Client.AuthorizeURL(state)})
}

// Callback is hit by Sketchfab's redirect, so there is no identity token to
// verify; the signed state is what ties the code to a uid. The exchange must
// succeed AND the token record must be written before we tell the browser the
// link worked.
func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code/state"})
		return
	}

	uid, err := auth.DecodeState(state, h.StateSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		return
	}

	tokenBody, err := h.Client.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		writeUpstreamError(c, err)
		return
	}

	if _, err := h.Store.UpsertToken(uid, tokenBody); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token exchange succeeded but storing the credential failed"})
		return
	}

	c.Redirect(http.StatusFound, h.ClientAppURL)
}

// Refresh exchanges the stored refresh token for a fresh access token. The
// upstream may return a partial body; the merge upsert keeps the rest of the
// record intact.
func (h *OAuthHandler) Refresh(c *gin.Context) {
	uid, ok := middleware.UIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid id token"})
		return
	}

	rec, ok := h.Store.GetToken(uid)
	if !ok || rec.RefreshToken() == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "No Sketchfab refresh token for user. Please connect your account."})
		return
	}

	tokenBody, err := h.Client.RefreshToken(c.Request.Context(), rec.RefreshToken())
	if err != nil {
		writeUpstreamError(c, err)
		return
	}

	if _, err := h.Store.UpsertToken(uid, tokenBody); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh succeeded but storing the credential failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
