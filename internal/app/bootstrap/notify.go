package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/insurance-leadform/internal/config"
	"github.com/wolfman30/insurance-leadform/internal/notify"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

// BuildEmailSender picks SendGrid, then SES, then the logging stub. The
// returned string names the provider for startup logs.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.EmailSender, string) {
	if logger == nil {
		logger = logging.Default()
	}
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil {
		return sender, "sendgrid"
	}
	if cfg.SESEnabled && cfg.SESFromEmail != "" {
		if awsCfg == nil {
			logger.Warn("ses enabled but aws config unavailable; using stub sender")
		} else if sender := notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender, "ses"
		}
	}
	return notify.NewStubEmailSender(logger), "stub"
}

// BuildLeadNotifier returns the new-lead notifier, or nil when no recipient
// is configured.
func BuildLeadNotifier(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) *notify.LeadNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.NotifyEmailTo == "" {
		logger.Info("lead notifications disabled; NOTIFY_EMAIL_TO not set")
		return nil
	}
	sender, provider := BuildEmailSender(cfg, awsCfg, logger)
	logger.Info("lead notifications enabled", "provider", provider)
	return notify.NewLeadNotifier(sender, cfg.NotifyEmailTo, logger)
}
