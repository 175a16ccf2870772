package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration shared by cmd/api and cmd/worker.
type Config struct {
	AWSRegion           string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSEndpointOverride string `envconfig:"AWS_ENDPOINT_OVERRIDE"`

	ProductsTable    string        `envconfig:"PRODUCTS_TABLE" default:"products"`
	OrdersTable      string        `envconfig:"ORDERS_TABLE" default:"orders"`
	OrderItemsTable  string        `envconfig:"ORDER_ITEMS_TABLE" default:"order_items"`
	IdempotencyTable string        `envconfig:"IDEMPOTENCY_TABLE" default:"checkout_idempotency"`
	ProfilesTable    string        `envconfig:"PROFILES_TABLE" default:"profiles"`
	IdempotencyTTL   time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"48h"`

	NotificationsQueueURL string `envconfig:"ORDER_NOTIFICATIONS_QUEUE_URL"`
	MetricsNamespace      string `envconfig:"METRICS_NAMESPACE" default:"Storefront/Checkout"`

	RunLocal  bool   `envconfig:"RUN_LOCAL"`
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	StoreName string `envconfig:"STORE_NAME" default:"ALAS Store"`

	// LocalSQSBody is the message the worker processes once when RUN_LOCAL is set.
	LocalSQSBody string `envconfig:"LOCAL_SQS_BODY"`

	SMTP SMTP
}

// SMTP holds the mail relay used by the confirmation worker. Keys are
// prefixed with SMTP_ (SMTP_HOST, SMTP_PORT, ...).
type SMTP struct {
	Host     string `envconfig:"HOST" default:"smtp.gmail.com"`
	Port     int    `envconfig:"PORT" default:"465"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
