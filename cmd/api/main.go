package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-medical-records/internal/adapters/auth"
	"pet-medical-records/internal/config"
	"pet-medical-records/internal/platform/logger"
	portauth "pet-medical-records/internal/ports/auth"
	"pet-medical-records/internal/router"

	"github.com/joho/godotenv"
)

// @title Pet Medical Records API
// @version 1.0
// @description Acceso compartido a historiales médicos de mascotas: códigos, tokens QR y registros.
// @BasePath /
func main() {
	_ = godotenv.Load()
	logger.InitFromEnv()
	log := logger.Get()

	cfg := config.Load()

	var verifier portauth.AuthVerifier // nil => modo dev con headers de debug
	if cfg.AuthSvcURL != "" {
		v, err := auth.NewServiceVerifier(cfg.AuthSvcURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid auth service url")
		}
		verifier = v
	}

	r := router.NewRouter(router.Options{
		Config:       cfg,
		AuthVerifier: verifier,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
