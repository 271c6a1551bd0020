package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"sketchfab-proxy/internal/sketchfab"
)

// writeUpstreamError maps the Sketchfab client's error taxonomy onto HTTP
// statuses: soft rejections are the caller's problem (400), transport
// failures are a bad gateway (502), and shape mismatches are ours (500).
// The message keeps the raw upstream text so operators can tell what broke.
func writeUpstreamError(c *gin.Context, err error) {
	var rejected *sketchfab.RejectedError
	if errors.As(err, &rejected) {
		c.JSON(http.StatusBadRequest, gin.H{"error": rejected.Error()})
		return
	}
	var protocol *sketchfab.ProtocolError
	if errors.As(err, &protocol) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": protocol.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
