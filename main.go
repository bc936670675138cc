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

	"github.com/NutriVision/NV-Backend/internal/admin"
	"github.com/NutriVision/NV-Backend/internal/analytics"
	"github.com/NutriVision/NV-Backend/internal/auth"
	"github.com/NutriVision/NV-Backend/internal/config"
	"github.com/NutriVision/NV-Backend/internal/contact"
	"github.com/NutriVision/NV-Backend/internal/db"
	"github.com/NutriVision/NV-Backend/internal/history"
	"github.com/NutriVision/NV-Backend/internal/mail"
	"github.com/NutriVision/NV-Backend/internal/middleware"
	"github.com/NutriVision/NV-Backend/internal/nutrition"
	"github.com/NutriVision/NV-Backend/internal/session"
	"github.com/NutriVision/NV-Backend/internal/vision"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db.Connect()

	// Everything below must finish before the listener starts; no handler
	// may see a half-initialised auth layer.
	auth.Init()
	session.Init()
	history.Init()
	nutrition.Init()
	contact.Init()

	middleware.SetAllowedOrigins(cfg.AllowedOrigins)

	registry := session.NewRegistry(session.NewStore(db.DB), cfg.HeartbeatInterval)

	authHandlers := &auth.Handlers{
		Heartbeats: registry,
		Mailer:     mail.NewService(cfg.SendGridAPIKey, cfg.MailFrom),
		Resets:     auth.NewResetTokens(),
		OAuth: auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.AppBaseURL, cfg.SelfBaseURL),
		AppBaseURL: cfg.AppBaseURL,
	}
	nutritionHandlers := &nutrition.Handlers{
		Client:  nutrition.NewClient(cfg.NutritionAPIURL, cfg.NutritionAPIKey),
		Facts:   nutrition.NewFactStore(),
		Records: history.Recorder{},
	}
	visionHandlers := &vision.Handlers{
		Client:  vision.NewClient(cfg.VisionAPIURL),
		Records: history.Recorder{},
	}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes(authHandlers))
	r.Mount("/nutrition", nutrition.SetupRoutes(nutritionHandlers))
	r.Mount("/vision", vision.SetupRoutes(visionHandlers, registry))
	r.Mount("/history", history.SetupRoutes(registry))
	r.Mount("/analytics", analytics.SetupRoutes(registry))
	r.Mount("/contact", contact.SetupRoutes())
	r.Mount("/admin", admin.SetupRoutes())

	server := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: r,
	}

	go func() {
		fmt.Println("Server listening on port :" + cfg.Port + "...")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	// Stop heartbeat trackers before the listener goes away so no tick
	// writes during teardown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	registry.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Println("Shutdown error: ", err)
	}
}
