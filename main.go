package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"phddash/internal/config"
	"phddash/internal/container"
	"phddash/internal/logging"
	"phddash/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)
	logging.SetLevel(logging.ParseLevel(appConfig.Log.Level))

	ctx := context.Background()
	appContainer, err := container.New(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	// Warm the cache so the first page view does not wait on the download.
	// A failure here is not fatal; the page shows the error and the next
	// request tries again.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, appConfig.Data.FetchTimeout)
		defer cancel()
		log.Println("Loading data...")
		if _, err := appContainer.Loader.Load(warmCtx); err != nil {
			log.Printf("Initial dataset load failed: %v", err)
		}
	}()

	server, err := appContainer.NewServer()
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if appConfig.Debug.Enabled {
		go func() {
			debugServer := &http.Server{
				Addr:              ":" + appConfig.Debug.Port,
				Handler:           ui.NewDebugRouter(appContainer.Registry),
				ReadHeaderTimeout: 10 * time.Second,
			}
			log.Printf("🚀 Debug server (pprof, metrics) starting on :%s", appConfig.Debug.Port)
			log.Printf("💡 View profiles: go tool pprof -http=:8081 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Debug.Port)
			if err := debugServer.ListenAndServe(); err != nil {
				log.Printf("❌ Debug server failed: %v", err)
			}
		}()
	}

	log.Printf("🚀 Starting PhD dashboard on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
