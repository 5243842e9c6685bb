package jobs

import (
	"context"

	"pet-medical-records/internal/domain/expiry"
)

// ExpiryScanJob corre el scanner de vencimientos. La cadencia normal es
// diaria; correrlo más seguido sin ledger de dedup duplica avisos.
type ExpiryScanJob struct {
	scanner *expiry.Scanner
}

func NewExpiryScanJob(scanner *expiry.Scanner) *ExpiryScanJob {
	return &ExpiryScanJob{scanner: scanner}
}

func (j *ExpiryScanJob) Name() string { return "expiry_scan" }

func (j *ExpiryScanJob) Run(ctx context.Context) error {
	_, err := j.scanner.Scan(ctx)
	return err
}
