package jobs

import (
	"context"
	"sync"
	"time"

	"pet-medical-records/internal/platform/logger"
	"pet-medical-records/internal/platform/metrics"
)

// Job es una unidad de trabajo periódico del worker. Run debe ser
// idempotente: el runner la reejecuta en cada tick sin estado previo.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type scheduled struct {
	job   Job
	every time.Duration
}

// Runner ejecuta jobs en tickers independientes. Cada job corre en su
// propia goroutine; un job lento no atrasa a los demás.
type Runner struct {
	jobs []scheduled
	wg   sync.WaitGroup
}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) Add(job Job, every time.Duration) {
	r.jobs = append(r.jobs, scheduled{job: job, every: every})
}

// Start lanza los tickers y ejecuta cada job una vez de entrada.
// Bloquea hasta que ctx se cancela y todos los jobs en vuelo terminan.
func (r *Runner) Start(ctx context.Context) {
	for _, s := range r.jobs {
		r.wg.Add(1)
		go func(s scheduled) {
			defer r.wg.Done()

			r.runOnce(ctx, s.job)

			ticker := time.NewTicker(s.every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					r.runOnce(ctx, s.job)
				}
			}
		}(s)
	}
	r.wg.Wait()
}

func (r *Runner) runOnce(ctx context.Context, job Job) {
	log := logger.Get()
	start := time.Now()

	if err := job.Run(ctx); err != nil {
		metrics.JobRuns.WithLabelValues(job.Name(), "error").Inc()
		log.Error().Err(err).Str("job", job.Name()).Dur("elapsed", time.Since(start)).Msg("job failed")
		return
	}

	metrics.JobRuns.WithLabelValues(job.Name(), "ok").Inc()
	log.Info().Str("job", job.Name()).Dur("elapsed", time.Since(start)).Msg("job finished")
}
