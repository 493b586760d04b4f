package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/opticode/internal/application"
	appanalysis "github.com/bryanwahyu/opticode/internal/application/analysis"
	"github.com/bryanwahyu/opticode/internal/config"
	"github.com/bryanwahyu/opticode/internal/infra/ai/gemini"
	groq "github.com/bryanwahyu/opticode/internal/infra/ai/openai"
	"github.com/bryanwahyu/opticode/internal/infra/classifier/huggingface"
	"github.com/bryanwahyu/opticode/internal/infra/httpserver"
	"github.com/bryanwahyu/opticode/internal/logging"
	"github.com/bryanwahyu/opticode/internal/middleware"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf(".env load error: %v", err)
	}

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("config load error: %v", err)
	}
	log := logging.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// classifier: block until the model is served
	classifier := huggingface.NewClient(cfg.Classifier.Endpoint, cfg.Classifier.Token)
	log.WithField("endpoint", classifier.Endpoint).Info("Loading security model... (This may take a moment)")
	if err := classifier.WaitReady(ctx, cfg.Classifier.ReadyInterval); err != nil {
		log.Fatalf("classifier not ready: %v", err)
	}

	// keys are not checked here; a missing one fails the first analysis that needs it
	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model)
	groqClient := groq.NewClient(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model)

	svc := &appanalysis.Service{
		Classifier: classifier,
		Gemini:     geminiClient,
		Groq:       groqClient,
		Clock:      application.SystemClock{},
		Log:        log,
	}

	checks := map[string]middleware.HealthChecker{"classifier": classifier}
	addr := cfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpserver.NewRouter(svc, checks, log),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
