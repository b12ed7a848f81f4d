package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mentormate/mentormate/config"
	"mentormate/mentormate/controllers"
	"mentormate/mentormate/routes"
	"mentormate/mentormate/services/llm"
	"mentormate/mentormate/services/tts"
	"mentormate/mentormate/sources/psql"
	"mentormate/mentormate/sources/psql/dao"
	"mentormate/mentormate/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	persona, err := config.LoadPersona(cfg.PersonaFile)
	if err != nil {
		logging.AppLogger.Warn("persona file error, using defaults", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	userDAO := dao.NewUserDAO(db.DB)
	messageDAO := dao.NewMessageDAO(db.DB)

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	generator := llm.NewGeminiClient(cfg.GeminiAPIKey, persona.Generation.Model, timeout)
	synthesizer := tts.NewOpenAIClient(cfg.OpenAIAPIKey, persona.Voice.Model, persona.Voice.Voice, persona.Voice.Format, timeout)

	authCtrl := controllers.NewAuthController(userDAO, cfg)
	messagesCtrl := controllers.NewMessagesController(messageDAO, generator, synthesizer, persona)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Mount("/auth", routes.AuthRoutes(authCtrl))
	r.Mount("/messages", routes.MessageRoutes(messagesCtrl, cfg))
	r.Mount("/health", routes.HealthRoutes(healthCtrl))

	srv := &http.Server{
		Addr:    ":" + getPort(),
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	logging.AppLogger.Info("mentormate listening", zap.String("addr", srv.Addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}

func getPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "5000"
}
