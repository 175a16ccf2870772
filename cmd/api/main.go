package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/auth"
	"github.com/imrishuroy/storefront-checkout/internal/aws"
	"github.com/imrishuroy/storefront-checkout/internal/config"
	"github.com/imrishuroy/storefront-checkout/internal/handlers"
	"github.com/imrishuroy/storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/storefront-checkout/internal/metrics"
	"github.com/imrishuroy/storefront-checkout/internal/notify"
	"github.com/imrishuroy/storefront-checkout/internal/orders"
	"github.com/imrishuroy/storefront-checkout/internal/products"
)

func setupRouter(cfg handlers.HandlerConfig, admin handlers.AdminConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLogger(cfg.Logger))
	r.Use(handlers.Identity())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterShippingRoutes(r)
	handlers.RegisterCheckoutRoutes(r, cfg)
	handlers.RegisterOrdersRoutes(r, cfg)
	handlers.RegisterAdminRoutes(r, admin)

	return r
}

func newLogger(local bool) (*zap.Logger, error) {
	if local {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.RunLocal)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	clients, err := aws.NewAWSClients(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to init aws clients", zap.Error(err))
	}

	productStore := products.NewStore(clients.DynamoDB, cfg.ProductsTable)
	hcfg := handlers.HandlerConfig{
		Products: productStore,
		Orders:   orders.NewStore(clients.DynamoDB, cfg.OrdersTable, cfg.OrderItemsTable),
		Attempts: idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL),
		Notifier: notify.NewSQSDispatcher(aws.NewPublisher(clients.SQS, cfg.NotificationsQueueURL), logger),
		Metrics:  metrics.NewRecorder(clients.CloudWatch, cfg.MetricsNamespace, logger),
		Logger:   logger,
	}

	if cfg.RunLocal {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := setupRouter(hcfg, handlers.AdminConfig{
		Products: productStore,
		Profiles: auth.NewProfileStore(clients.DynamoDB, cfg.ProfilesTable),
		Logger:   logger,
	})

	// RUN_LOCAL=true serves HTTP directly for development.
	if cfg.RunLocal {
		logger.Info("running local server", zap.String("addr", cfg.HTTPAddr))
		if err := r.Run(cfg.HTTPAddr); err != nil {
			logger.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
