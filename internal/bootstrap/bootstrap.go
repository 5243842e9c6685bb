// Package bootstrap arma las dependencias compartidas entre el API y el
// worker a partir de la config: storage, gateway de notificaciones,
// directorio de identidades y ledger de dedup. Cada pieza cae a su
// variante in-memory cuando el backend real no está configurado.
package bootstrap

import (
	"database/sql"

	"pet-medical-records/internal/adapters/cache"
	"pet-medical-records/internal/adapters/directory"
	notifyadapter "pet-medical-records/internal/adapters/notify"
	mem "pet-medical-records/internal/adapters/storage/memory"
	pg "pet-medical-records/internal/adapters/storage/postgres"
	"pet-medical-records/internal/config"
	"pet-medical-records/internal/domain/grants"
	"pet-medical-records/internal/domain/identity"
	"pet-medical-records/internal/domain/pets"
	"pet-medical-records/internal/domain/records"
	"pet-medical-records/internal/platform/logger"
	"pet-medical-records/internal/ports/notify"
)

// Storage agrupa los repos, todos contra el mismo backend.
type Storage struct {
	Pets    pets.Repository
	Records records.Repository
	Grants  grants.Store

	DB *sql.DB // nil en modo in-memory
}

// BuildStorage abre Postgres si hay DSN (o si viene un *sql.DB armado)
// y cae a in-memory si no.
func BuildStorage(cfg config.Config, db *sql.DB) Storage {
	if db == nil && cfg.DBDSN != "" {
		opened, err := pg.Open(cfg.DBDSN)
		if err != nil {
			logger.Get().Warn().Err(err).Msg("postgres unavailable, falling back to in-memory storage")
		} else {
			db = opened
		}
	}

	if db != nil {
		return Storage{
			Pets:    pg.NewPetRepo(db),
			Records: pg.NewRecordRepo(db),
			Grants:  pg.NewGrantStore(db),
			DB:      db,
		}
	}
	return Storage{
		Pets:    mem.NewPetRepo(),
		Records: mem.NewRecordRepo(),
		Grants:  mem.NewGrantStore(),
	}
}

// BuildGateway arma el gateway de notificaciones: webhook asíncrono si
// está configurado, log si no.
func BuildGateway(cfg config.Config) notify.Gateway {
	if cfg.NotifyWebhookURL == "" {
		return notifyadapter.NewLogGateway()
	}
	gw, err := notifyadapter.NewWebhookGateway(cfg.NotifyWebhookURL, cfg.NotifyAPIKey)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("invalid notify webhook url, using log gateway")
		return notifyadapter.NewLogGateway()
	}
	return notifyadapter.NewAsyncGateway(gw)
}

// BuildDirectory arma el directorio de identidades: servicio de cuentas
// si está configurado, memoria si no.
func BuildDirectory(cfg config.Config) identity.Directory {
	if cfg.AccountSvcURL == "" {
		return directory.NewMemory()
	}
	dir, err := directory.NewAccountService(cfg.AccountSvcURL, cfg.AccountAPIKey)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("invalid account service url, using in-memory directory")
		return directory.NewMemory()
	}
	return dir
}

// BuildDedupLedger arma el ledger del scanner: Redis si está configurado
// (compartido entre réplicas), memoria local si no.
func BuildDedupLedger(cfg config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemory()
	}
	c, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("redis unavailable, using in-memory dedup ledger")
		return cache.NewMemory()
	}
	return c
}
