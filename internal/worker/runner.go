package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"urlvetter/internal/models"
	"urlvetter/internal/queue"
	"urlvetter/internal/scan"
	"urlvetter/internal/store"
)

// Runner drains the scan queue. Start blocks until the context is
// cancelled.
type Runner struct {
	Service     *scan.Service
	ScanTimeout time.Duration
}

func (r *Runner) Start(ctx context.Context) {
	log.Info("worker started, waiting for tasks")

	for {
		task, err := queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Error("queue error")
			time.Sleep(1 * time.Second) // Backoff on error
			continue
		}

		scanCtx, cancel := context.WithTimeout(ctx, r.ScanTimeout)
		verdict := r.Service.Scan(scanCtx, task.URL, task.Semantic, task.ThreatIntel)
		cancel()

		if err := saveVerdict(ctx, task.JobID, verdict); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"job_id": task.JobID,
				"url":    task.URL,
			}).Error("failed to save verdict")
			continue
		}

		log.WithFields(log.Fields{
			"job_id": task.JobID,
			"url":    task.URL,
			"score":  verdict.Fusion.UnifiedRiskScore,
			"tier":   verdict.Fusion.Tier,
		}).Info("processed")
	}
}

// saveVerdict writes the verdict snapshot and advances job progress inside
// one transaction, flipping the job to completed when the last URL lands.
func saveVerdict(ctx context.Context, jobID string, verdict models.ScanVerdict) error {
	raw, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("marshaling verdict: %w", err)
	}

	tx, err := store.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO verdicts (job_id, url, score, tier, data)
		VALUES ($1, $2, $3, $4, $5)
	`, jobID, verdict.URL, verdict.Fusion.UnifiedRiskScore, verdict.Fusion.Tier, raw)
	if err != nil {
		return fmt.Errorf("inserting verdict: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE scan_jobs
		SET processed_count = processed_count + 1,
		    status = CASE
		        WHEN processed_count + 1 >= total_count THEN 'completed'
		        ELSE status
		    END,
		    completed_at = CASE
		        WHEN processed_count + 1 >= total_count THEN NOW()
		        ELSE completed_at
		    END
		WHERE id = $1
	`, jobID)
	if err != nil {
		return fmt.Errorf("updating job progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing verdict: %w", err)
	}
	return nil
}
