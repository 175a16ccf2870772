package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/auth"
)

const (
	headerRequestID = "X-Request-Id"
	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"

	ctxRequestID = "request_id"
	ctxUser      = "user"
)

// RequestLogger assigns a request id (reusing X-Request-Id when sent) and
// logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(headerRequestID, requestID)

		c.Next()

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Identity reads the caller forwarded by the upstream authorizer. Requests
// without X-User-Id carry an empty identity.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxUser, auth.StaticIdentity{User: auth.User{
			ID:    c.GetHeader(headerUserID),
			Email: c.GetHeader(headerUserEmail),
		}})
		c.Next()
	}
}

func identityFrom(c *gin.Context) auth.StaticIdentity {
	if v, ok := c.Get(ctxUser); ok {
		if id, ok := v.(auth.StaticIdentity); ok {
			return id
		}
	}
	return auth.StaticIdentity{}
}

func requestLogger(c *gin.Context, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("request_id", c.GetString(ctxRequestID)))
}
