package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/notify"
)

// Processor turns order confirmation messages into e-mails.
type Processor struct {
	mailer       notify.Mailer
	storeName    string
	contactEmail string
	logger       *zap.Logger
}

// NewProcessor creates a worker processor. contactEmail is shown in the
// e-mail footer and may be empty.
func NewProcessor(mailer notify.Mailer, storeName, contactEmail string, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{mailer: mailer, storeName: storeName, contactEmail: contactEmail, logger: logger}
}

// Handle processes an SQS batch. Failed messages are reported individually
// so that only they are redelivered; after too many receives they go to the
// DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.Error("confirmation failed", zap.String("message_id", rec.MessageId), zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	if t, ok := rec.MessageAttributes["type"]; ok && t.StringValue != nil && *t.StringValue != notify.MessageType {
		p.logger.Warn("skipping message of unknown type", zap.String("message_id", rec.MessageId), zap.String("type", *t.StringValue))
		return nil
	}

	var msg notify.Confirmation
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	email, err := notify.Render(msg, p.storeName, p.contactEmail)
	if err != nil {
		return err
	}
	if err := p.mailer.Send(ctx, email); err != nil {
		return err
	}

	p.logger.Info("confirmation sent",
		zap.String("order_id", msg.Order.OrderID),
		zap.String("to", email.To))
	return nil
}

// logMailer stands in for SMTP during local runs without credentials.
type logMailer struct {
	logger *zap.Logger
}

func (m logMailer) Send(ctx context.Context, e notify.Email) error {
	m.logger.Info("mail not sent, smtp not configured", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}
