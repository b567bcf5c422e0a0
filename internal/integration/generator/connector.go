package generator

import (
	"context"
	"fmt"
	"net/http"

	"github.com/24thNight/clarify-backend/internal/config"
	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/24thNight/clarify-backend/internal/pkg/retry"
	pkghttp "github.com/24thNight/clarify-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to the external question generation service.
type Connector struct {
	config    config.GeneratorConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.GeneratorConnectorConfig,
	logger *zap.Logger,
) *Connector {
	connCfg := &pkghttp.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	connector := pkghttp.NewConnector(
		connCfg,
		pkghttp.WithRequestTimeout(cfg.RequestTimeout),
		pkghttp.WithDialTimeout(cfg.ConnTimeout),
		pkghttp.WithKeepAlive(cfg.KeepAlive),
		pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkghttp.WithRequestLogging(),
		pkghttp.WithAuthToken(cfg.Token),
	)

	return &Connector{
		connector: connector,
		config:    cfg,
		logger:    logger,
	}
}

// GenerateQuestions requests a question batch for the given plan. Transient
// failures are retried with backoff before the error is surfaced.
func (c *Connector) GenerateQuestions(ctx context.Context, req *entity.GenerateQuestionsRequest) (
	*entity.GenerateQuestionsResponse, error,
) {
	ctxzap.Info(ctx, "generating clarification questions",
		zap.String("session_id", req.SessionID),
		zap.Stringp("plan_id", req.PlanID),
	)

	var resp entity.GenerateQuestionsResponse
	err := retry.Do(ctx, &c.config.Retry, func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.GenerateEndpoint, req, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	ctxzap.Info(ctx, "questions generated", zap.Int("question_count", len(resp.Questions)))

	return &resp, nil
}
