package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/wolfman30/insurance-leadform/internal/config"
	"github.com/wolfman30/insurance-leadform/internal/fallback"
	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/internal/observability/metrics"
	"github.com/wolfman30/insurance-leadform/internal/persistence"
	"github.com/wolfman30/insurance-leadform/internal/sheets"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

// SheetsConfig derives the spreadsheet settings from cfg. ok is false when no
// service account is configured.
func SheetsConfig(cfg *appconfig.Config) (sheetCfg sheets.Config, ok bool, err error) {
	if cfg == nil {
		return sheets.Config{}, false, fmt.Errorf("bootstrap: config is required")
	}
	creds, err := cfg.ServiceAccountJSON()
	if err != nil {
		return sheets.Config{}, false, fmt.Errorf("bootstrap: read google service account: %w", err)
	}
	if len(creds) == 0 {
		return sheets.Config{}, false, nil
	}
	return sheets.Config{
		SpreadsheetID:   cfg.SheetID,
		SpreadsheetName: cfg.SheetName,
		WorksheetName:   cfg.WorksheetName,
		CredentialsJSON: creds,
		Header:          leads.Columns,
	}, true, nil
}

// BuildSheetsConnector returns a connector to the configured spreadsheet, or
// nil when no service account is configured.
func BuildSheetsConnector(cfg *appconfig.Config, logger *logging.Logger) (persistence.Connector, error) {
	if logger == nil {
		logger = logging.Default()
	}
	sheetCfg, ok, err := SheetsConfig(cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Warn("no google service account configured; leads will only be written to the fallback file")
		return nil, nil
	}
	return func(ctx context.Context) (persistence.RemoteStore, error) {
		ws, err := sheets.Connect(ctx, sheetCfg, logger)
		if err != nil {
			return nil, err
		}
		return ws, nil
	}, nil
}

// BuildFallbackStore returns the local CSV store, mirrored to S3 when enabled
// and an AWS config is available.
func BuildFallbackStore(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) *fallback.MirroredStore {
	if logger == nil {
		logger = logging.Default()
	}
	local := fallback.NewCSVStore(cfg.FallbackCSVPath)

	var mirror *fallback.S3Mirror
	if cfg.FallbackS3Enabled && cfg.FallbackS3Bucket != "" {
		if awsCfg == nil {
			logger.Warn("fallback s3 mirror enabled but aws config unavailable; mirror disabled")
		} else {
			client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
				// LocalStack needs path-style addressing
				o.UsePathStyle = cfg.AWSEndpointOverride != ""
			})
			mirror = fallback.NewS3Mirror(client, cfg.FallbackS3Bucket, cfg.FallbackS3Key, logger)
			logger.Info("fallback file mirrored to s3", "bucket", cfg.FallbackS3Bucket, "key", cfg.FallbackS3Key)
		}
	}
	return fallback.NewMirroredStore(local, mirror, logger)
}

// BuildGateway wires the persistence gateway. It does not connect; callers
// decide when to call Connect.
func BuildGateway(cfg *appconfig.Config, awsCfg *aws.Config, leadMetrics *metrics.LeadMetrics, logger *logging.Logger) (*persistence.Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	policy, err := persistence.ParseRetryPolicy(cfg.RemoteRetryPolicy)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	connector, err := BuildSheetsConnector(cfg, logger)
	if err != nil {
		return nil, err
	}
	return persistence.NewGateway(persistence.Config{
		Connect:       connector,
		Fallback:      BuildFallbackStore(cfg, awsCfg, logger),
		Policy:        policy,
		RemoteTimeout: cfg.RemoteWriteTimeout,
		Metrics:       leadMetrics,
		Logger:        logger,
	}), nil
}
