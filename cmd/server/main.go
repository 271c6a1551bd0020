package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"sketchfab-proxy/internal/auth"
	"sketchfab-proxy/internal/config"
	"sketchfab-proxy/internal/server"
	"sketchfab-proxy/internal/sketchfab"
	"sketchfab-proxy/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	gin.SetMode(cfg.GinMode)
	st := store.NewWithOptions(store.Options{StateFile: cfg.StateFile})

	client := sketchfab.NewClient(sketchfab.Config{
		ClientID:     cfg.SketchfabClientID,
		ClientSecret: cfg.SketchfabClientSecret,
		RedirectURI:  cfg.CallbackURL(),
		Timeout:      cfg.UpstreamTimeout,
	})

	tokenCfg := auth.TokenConfig{
		Secret: cfg.MasterSecret,
		Expiry: cfg.TokenExpiry,
		Issuer: "sketchfab-proxy",
	}

	router := server.NewRouter(server.Deps{
		Store:        st,
		Client:       client,
		TokenConfig:  tokenCfg,
		StateSecret:  cfg.MasterSecret,
		ClientAppURL: cfg.ClientAppURL,
	})
	log.Printf("listening on %s", fmt.Sprintf(":%d", cfg.Port))
	log.Fatal(server.Run(cfg, router))
}
