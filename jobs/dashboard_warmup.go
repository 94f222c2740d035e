package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/zedx-auto/garagepos/internal/dashboard"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

// DashboardWarmupProcessor refreshes the cached dashboard snapshot on a
// schedule. It signs in with a dedicated service account because the worker
// holds no operator session.
type DashboardWarmupProcessor struct {
	logger    *slog.Logger
	api       *shopapi.Client
	dashboard *dashboard.Service
	username  string
	password  string
}

// NewDashboardWarmupProcessor builds a DashboardWarmupProcessor.
func NewDashboardWarmupProcessor(logger *slog.Logger, api *shopapi.Client, dash *dashboard.Service, username, password string) *DashboardWarmupProcessor {
	return &DashboardWarmupProcessor{
		logger:    logger,
		api:       api,
		dashboard: dash,
		username:  username,
		password:  password,
	}
}

// Handle processes TaskDashboardWarmup tasks.
func (p *DashboardWarmupProcessor) Handle(ctx context.Context, t *asynq.Task) error {
	if p.username == "" {
		p.logger.Debug("dashboard warmup skipped, no service account configured")
		return nil
	}
	login, err := p.api.Login(ctx, p.username, p.password)
	if err != nil {
		p.logger.Warn("dashboard warmup sign-in failed", slog.Any("error", err))
		return err
	}
	if err := p.dashboard.Refresh(ctx, login.AccessToken); err != nil {
		return err
	}
	p.logger.Info("dashboard snapshot refreshed")
	return nil
}
