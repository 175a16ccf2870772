package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/config"
	"github.com/imrishuroy/storefront-checkout/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.RunLocal {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var mailer notify.Mailer = notify.NewSMTPMailer(cfg.SMTP, cfg.StoreName)
	if cfg.RunLocal && cfg.SMTP.Username == "" {
		mailer = logMailer{logger: logger}
	}
	p := NewProcessor(mailer, cfg.StoreName, cfg.SMTP.Username, logger)

	// If RUN_LOCAL=true, process LOCAL_SQS_BODY once instead of starting Lambda.
	if cfg.RunLocal {
		if cfg.LocalSQSBody == "" {
			logger.Fatal("LOCAL_SQS_BODY is required when RUN_LOCAL is set")
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{MessageId: "local-1", Body: cfg.LocalSQSBody},
			},
		}
		resp, err := p.Handle(context.Background(), event)
		if err != nil || len(resp.BatchItemFailures) > 0 {
			logger.Fatal("local handler error", zap.Error(err))
		}
		return
	}

	lambda.Start(p.Handle)
}
