package main

import (
	"context"
	"os/signal"
	"syscall"

	"pet-medical-records/internal/bootstrap"
	"pet-medical-records/internal/config"
	"pet-medical-records/internal/domain/expiry"
	"pet-medical-records/internal/domain/pets"
	"pet-medical-records/internal/jobs"
	"pet-medical-records/internal/platform/logger"

	"github.com/joho/godotenv"
)

// El worker corre los jobs periódicos fuera del ciclo de requests:
// limpieza de tokens viejos y el scan diario de vencimientos.
func main() {
	_ = godotenv.Load()
	logger.InitFromEnv()
	log := logger.Get()

	cfg := config.Load()

	storage := bootstrap.BuildStorage(cfg, nil)
	if storage.DB == nil {
		log.Warn().Msg("running worker against in-memory storage, jobs see no API data")
	}

	gateway := bootstrap.BuildGateway(cfg)
	dir := bootstrap.BuildDirectory(cfg)
	ledger := bootstrap.BuildDedupLedger(cfg)

	petsSvc := pets.NewService(storage.Pets)
	scanner := expiry.NewScanner(storage.Records, petsSvc, dir, gateway, ledger)

	runner := jobs.NewRunner()
	runner.Add(jobs.NewCleanupJob(storage.Grants), cfg.CleanupEvery)
	runner.Add(jobs.NewExpiryScanJob(scanner), cfg.ScanEvery)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Dur("cleanup_every", cfg.CleanupEvery).
		Dur("scan_every", cfg.ScanEvery).
		Msg("starting worker")
	runner.Start(ctx)
	log.Info().Msg("worker stopped")
}
