package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/portalkit/catalog/pkg/catalog/api"
	"github.com/portalkit/catalog/pkg/catalog/config"
)

// AuthConfig carries the JWT verification settings. When the secret is
// empty the server falls back to X-User-* header identity, which is
// only acceptable behind a trusted gateway.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET" env-default:""`
}

func main() {
	var authCfg AuthConfig
	if err := cleanenv.ReadEnv(&authCfg); err != nil {
		log.Fatalf("Failed to read auth configuration: %v", err)
	}

	serverConfig, err := config.Load(config.WithEnv(""))
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	svc, err := serverConfig.BuildService()
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}

	var tokenAuth *jwtauth.JWTAuth
	if authCfg.JWTSecret != "" {
		tokenAuth = jwtauth.New("HS256", []byte(authCfg.JWTSecret), nil)
	}

	server := api.NewServer(svc, tokenAuth, serverConfig.Environment)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: server.Routes(),
	}

	go func() {
		log.Printf("Catalog server starting on port %s (env: %s)", serverConfig.Port, serverConfig.Environment)
		log.Printf("Database: %s", serverConfig.DatabaseType)
		log.Printf("Default storage backend: %s", serverConfig.DefaultStorageBackend)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
