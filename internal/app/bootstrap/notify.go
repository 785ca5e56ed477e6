package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/cashcarbc/voice-intake/internal/config"
	"github.com/cashcarbc/voice-intake/internal/notify"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

// BuildEmailSender selects the manager email transport. Misconfigured
// providers fall back to the stub so calls are never blocked on email.
func BuildEmailSender(cfg *appconfig.Config, sesClient *sesv2.Client, logger *logging.Logger) (notify.EmailSender, string) {
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender, "sendgrid"
		}
		logger.Warn("EMAIL_PROVIDER=sendgrid but SENDGRID_API_KEY is empty; using stub sender")
	case "ses":
		sender := notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender, "ses"
		}
		logger.Warn("EMAIL_PROVIDER=ses but no SES client is available; using stub sender")
	}
	return notify.NewStubEmailSender(logger), "stub"
}
