package router

import (
	"database/sql"
	"net/http"

	"pet-medical-records/internal/bootstrap"
	"pet-medical-records/internal/config"
	"pet-medical-records/internal/domain/grants"
	"pet-medical-records/internal/domain/identity"
	"pet-medical-records/internal/domain/pets"
	"pet-medical-records/internal/domain/records"
	"pet-medical-records/internal/middleware"
	"pet-medical-records/internal/ports/auth"
	"pet-medical-records/internal/ports/notify"

	_ "pet-medical-records/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config config.Config

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, intenta por DSN y cae a in-memory.
	DB *sql.DB

	// Opcionales: si son nil se arman según config.
	Gateway   notify.Gateway
	Directory identity.Directory
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Debug-User-ID", "X-Debug-User-Role"},
		MaxAge:         300,
	}))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	storage := bootstrap.BuildStorage(cfg, opts.DB)

	gateway := opts.Gateway
	if gateway == nil {
		gateway = bootstrap.BuildGateway(cfg)
	}
	dir := opts.Directory
	if dir == nil {
		dir = bootstrap.BuildDirectory(cfg)
	}

	// Services por módulo. Grants y records entran como cascades del
	// borrado de mascotas vía su DeleteByPet.
	petsSvc := pets.NewService(storage.Pets, storage.Grants, storage.Records)
	issuer := grants.NewIssuer(storage.Grants)
	validator := grants.NewValidator(storage.Grants, petsSvc, issuer)
	recordsSvc := records.NewService(storage.Records, validator, petsSvc, dir, gateway)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, validator)
	grants.RegisterRoutes(r, issuer, validator, petsSvc)
	records.RegisterRoutes(r, recordsSvc)

	return r
}
