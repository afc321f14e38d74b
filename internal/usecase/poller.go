package usecase

import (
	"context"
	"time"

	"adsync/internal/domain"
	"adsync/pkg/logger"
	"adsync/pkg/metrics"
)

// Poller drives the bounded cooperative polling loop over outstanding jobs.
// Reaching the iteration ceiling is a legitimate "not finished yet" result,
// not an error; the caller hands the partition back for resumption.
type Poller struct {
	api           domain.ReportingAPI
	logger        *logger.Logger
	metrics       *metrics.Metrics
	interval      time.Duration
	maxIterations int
}

func NewPoller(api domain.ReportingAPI, logger *logger.Logger, metrics *metrics.Metrics, interval time.Duration, maxIterations int) *Poller {
	return &Poller{
		api:           api,
		logger:        logger,
		metrics:       metrics,
		interval:      interval,
		maxIterations: maxIterations,
	}
}

// Partition splits jobs by terminal state.
type Partition struct {
	Pending   []domain.ReportJob
	Completed []domain.ReportJob
	Failed    []domain.ReportJob
}

// All returns every job in the partition, for the resumption snapshot.
func (p Partition) All() []domain.ReportJob {
	all := make([]domain.ReportJob, 0, len(p.Pending)+len(p.Completed)+len(p.Failed))
	all = append(all, p.Completed...)
	all = append(all, p.Failed...)
	all = append(all, p.Pending...)
	return all
}

func partitionJobs(jobs []domain.ReportJob) Partition {
	var part Partition
	for _, job := range jobs {
		switch {
		case job.Status == domain.JobCompleted:
			part.Completed = append(part.Completed, job)
		case job.Status == domain.JobError:
			part.Failed = append(part.Failed, job)
		case job.Pollable():
			part.Pending = append(part.Pending, job)
		}
	}
	return part
}

// Wait polls every pending job each iteration until all are terminal, the
// iteration ceiling is reached, or ctx expires. Ceiling and deadline expiry
// are the same outcome: the current partition.
func (p *Poller) Wait(ctx context.Context, auth domain.RequestAuth, jobs []domain.ReportJob) Partition {
	log := p.logger.WithContext(ctx)
	part := partitionJobs(jobs)

	for iteration := 0; iteration < p.maxIterations && len(part.Pending) > 0; iteration++ {
		if err := sleepCtx(ctx, p.interval); err != nil {
			log.WithField("pending", len(part.Pending)).Warn("Polling cancelled, returning partial job state")
			return part
		}

		var stillPending []domain.ReportJob
		for _, job := range part.Pending {
			status, err := p.api.GetReport(ctx, auth, job.ReportID)
			if err != nil {
				// transient; the iteration ceiling bounds the retries
				log.WithError(err).WithField("report", job.Key).Warn("Report status request failed, will retry")
				stillPending = append(stillPending, job)
				continue
			}

			switch status.Status {
			case domain.UpstreamCompleted:
				job.Status = domain.JobCompleted
				job.DownloadURL = status.URL
				part.Completed = append(part.Completed, job)
				p.metrics.RecordReportJob(job.Key, string(domain.JobCompleted))
				log.WithField("report", job.Key).Info("Report completed")

			case domain.UpstreamFailure:
				job.Status = domain.JobError
				job.Error = status.Detail()
				part.Failed = append(part.Failed, job)
				p.metrics.RecordReportJob(job.Key, string(domain.JobError))
				log.WithFields(map[string]any{
					"report": job.Key,
					"detail": job.Error,
				}).Error("Report failed upstream")

			default:
				stillPending = append(stillPending, job)
			}
		}
		part.Pending = stillPending
	}

	if len(part.Pending) > 0 {
		log.WithField("pending", len(part.Pending)).Info("Poll budget exhausted with jobs outstanding")
	}
	return part
}

// sleepCtx sleeps for d unless ctx expires first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
