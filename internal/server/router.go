package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"sketchfab-proxy/internal/auth"
	"sketchfab-proxy/internal/handler"
	"sketchfab-proxy/internal/middleware"
	"sketchfab-proxy/internal/sketchfab"
	"sketchfab-proxy/internal/store"
)

type Deps struct {
	Store        *store.Store
	Client       *sketchfab.Client
	TokenConfig  auth.TokenConfig
	StateSecret  string
	ClientAppURL string
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	if deps.ClientAppURL != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{deps.ClientAppURL},
			AllowMethods:     []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Sketchfab proxy server is running.")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	oauthHandler := &handler.OAuthHandler{
		Store:        deps.Store,
		Client:       deps.Client,
		StateSecret:  deps.StateSecret,
		ClientAppURL: deps.ClientAppURL,
	}
	modelHandler := &handler.ModelHandler{Store: deps.Store, Client: deps.Client}

	api := r.Group("/api/sketchfab")

	startLimiter := middleware.NewRateLimiter(10, time.Minute)
	api.POST("/auth/start", middleware.RateLimit(startLimiter), middleware.RequireAuth(deps.TokenConfig), oauthHandler.Start)

	// The callback carries no identity token; the signed state is the gate.
	api.GET("/auth/callback", oauthHandler.Callback)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(deps.TokenConfig))
	protected.POST("/auth/refresh", oauthHandler.Refresh)
	protected.POST("/upload", modelHandler.Upload)
	protected.PATCH("/models/:modelId", modelHandler.Update)
	protected.DELETE("/models/:modelId", modelHandler.Delete)
	protected.GET("/artworks", modelHandler.Artworks)

	return r
}
