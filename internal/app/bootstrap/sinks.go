package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/cashcarbc/voice-intake/internal/config"
	"github.com/cashcarbc/voice-intake/internal/leads"
	"github.com/cashcarbc/voice-intake/internal/notify"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

// SinkDeps are the optional clients lead sinks can write through.
type SinkDeps struct {
	Pool     *pgxpool.Pool
	SQS      *sqs.Client
	Email    notify.EmailSender
	Observer leads.SinkObserver
}

// BuildLeadSinks assembles every configured sink. The returned repository is
// always present: Postgres when a pool is given, process memory otherwise.
func BuildLeadSinks(ctx context.Context, cfg *appconfig.Config, deps SinkDeps, logger *logging.Logger) (*leads.MultiSink, leads.Repository) {
	if logger == nil {
		logger = logging.Default()
	}

	var repo leads.Repository
	repoName := "memory"
	if deps.Pool != nil {
		repo = leads.NewPostgresRepository(deps.Pool)
		repoName = "postgres"
	} else {
		repo = leads.NewInMemoryRepository()
	}
	sinks := []leads.NamedSink{{Name: repoName, Sink: repo}}

	if sheetsSink, err := leads.NewSheetsSink(ctx, cfg.GoogleServiceAccount, cfg.GoogleSheetID, cfg.GoogleSheetRange, logger); err == nil {
		sinks = append(sinks, leads.NamedSink{Name: "sheets", Sink: sheetsSink})
	} else if strings.TrimSpace(cfg.GoogleSheetID) != "" {
		logger.Error("google sheets sink disabled", "error", err)
	}

	if queueURL := strings.TrimSpace(cfg.LeadsQueueURL); queueURL != "" {
		if deps.SQS != nil {
			sinks = append(sinks, leads.NamedSink{Name: "sqs", Sink: leads.NewQueuePublisher(deps.SQS, queueURL)})
		} else {
			logger.Warn("LEADS_QUEUE_URL set but no SQS client is available")
		}
	}

	if strings.TrimSpace(cfg.ManagerEmail) != "" && deps.Email != nil {
		sinks = append(sinks, leads.NamedSink{
			Name: "manager_email",
			Sink: notify.NewReviewNotifier(deps.Email, cfg.ManagerEmail, logger),
		})
	}

	multi := leads.NewMultiSink(logger, deps.Observer, sinks...)
	logger.Info("lead sinks configured", "sinks", strings.Join(multi.Names(), ","))
	return multi, repo
}
