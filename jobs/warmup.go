package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/wearkati/katicontrol/internal/dashboard"
)

const warmupReportTimeout = 20 * time.Second

// DashboardWarmupJob precomputes dashboard reports so the morning's first
// request hits a warm cache.
type DashboardWarmupJob struct {
	Dashboard *dashboard.Service
	Logger    *slog.Logger
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(svc *dashboard.Service, logger *slog.Logger) *DashboardWarmupJob {
	return &DashboardWarmupJob{Dashboard: svc, Logger: logger}
}

// Handle processes warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	reports := payload.Reports
	if len(reports) == 0 {
		reports = []string{"morning", "alerts", "profitability", "sales", "recommendations"}
	}

	logger := j.logger()
	logger.Info("starting dashboard warmup", slog.Int("reports", len(reports)))
	started := time.Now()

	for _, report := range reports {
		if err := j.warmReport(ctx, report); err != nil {
			logger.Error("warm report", slog.String("report", report), slog.Any("error", err))
			return err
		}
	}

	logger.Info("completed dashboard warmup", slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *DashboardWarmupJob) warmReport(ctx context.Context, report string) error {
	reportCtx, cancel := context.WithTimeout(ctx, warmupReportTimeout)
	defer cancel()

	var err error
	switch report {
	case "morning":
		_, err = j.Dashboard.Morning(reportCtx)
	case "alerts":
		_, err = j.Dashboard.Alerts(reportCtx)
	case "profitability":
		_, err = j.Dashboard.Profitability(reportCtx)
	case "sales":
		_, err = j.Dashboard.Sales(reportCtx)
	case "recommendations":
		_, err = j.Dashboard.Recommendations(reportCtx)
	default:
		j.logger().Warn("unknown warmup report", slog.String("report", report))
	}
	return err
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}
