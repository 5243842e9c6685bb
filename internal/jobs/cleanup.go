package jobs

import (
	"context"
	"time"

	"pet-medical-records/internal/domain/grants"
	"pet-medical-records/internal/platform/metrics"
)

const (
	// staleAfter: un token sin usar más viejo que esto ya no puede
	// canjearse (la validez es de 10 minutos) y se puede borrar.
	staleAfter = 600 * time.Second

	// purgeBatchSize acota cada DELETE para no trabar la tabla.
	purgeBatchSize = 1000
)

// CleanupJob purga tokens sin usar que ya quedaron fuera de la ventana
// de validez. Los tokens usados se conservan como rastro del canje.
type CleanupJob struct {
	store grants.Store
	now   func() time.Time
}

func NewCleanupJob(store grants.Store) *CleanupJob {
	return &CleanupJob{store: store, now: time.Now}
}

func (j *CleanupJob) Name() string { return "token_cleanup" }

func (j *CleanupJob) Run(ctx context.Context) error {
	olderThan := j.now().Add(-staleAfter)

	for _, kind := range []grants.TokenKind{grants.TokenKindShare, grants.TokenKindVet} {
		// En lotes hasta agotar: una corrida atrasada puede tener
		// mucho más de un batch acumulado.
		for {
			n, err := j.store.PurgeExpiredUnused(ctx, kind, olderThan, purgeBatchSize)
			if err != nil {
				return err
			}
			if n > 0 {
				metrics.PurgedTokens.WithLabelValues(string(kind)).Add(float64(n))
			}
			if n < purgeBatchSize {
				break
			}
		}
	}
	return nil
}
