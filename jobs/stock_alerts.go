package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/fabrica-erp/panel/internal/dashboard"
	"github.com/fabrica-erp/panel/internal/gateway"
	jobmetrics "github.com/fabrica-erp/panel/internal/jobs"
	"github.com/fabrica-erp/panel/internal/masterdata/materials"
	"github.com/fabrica-erp/panel/internal/masterdata/products"
	"github.com/fabrica-erp/panel/internal/platform/cache"
)

// ServiceAccount holds the API credentials the worker signs in with.
type ServiceAccount struct {
	Username string
	Password string
}

// StockAlertJob reads both alert endpoints with the service account and
// stores the result for the dashboard.
type StockAlertJob struct {
	API     *gateway.Client
	Account ServiceAccount
	Cache   *cache.Versioned
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStockAlertJob initialises the scan handler.
func NewStockAlertJob(api *gateway.Client, account ServiceAccount, c *cache.Versioned, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockAlertJob {
	return &StockAlertJob{
		API:     api,
		Account: account,
		Cache:   c,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one scan.
func (j *StockAlertJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.API == nil {
		return errors.New("stock alerts: handler not configured")
	}
	var payload StockAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track("stock_alerts")
	logger := j.logger().With(slog.String("trigger", payload.Trigger))
	logger.Info("starting stock alert scan")

	snap, err := j.Scan(ctx)
	if err != nil {
		logger.Error("stock alert scan failed", slog.Any("error", err))
		return tracker.End(err)
	}
	for _, a := range snap.Alerts {
		logger.Warn("low stock",
			slog.String("kind", a.Kind),
			slog.String("code", a.Code),
			slog.Float64("stock", a.Stock),
			slog.Float64("minimum", a.Minimum),
		)
	}
	logger.Info("completed stock alert scan", slog.Int("alerts", len(snap.Alerts)))
	return tracker.End(nil)
}

// Scan signs in, reads the alert endpoints and stores the snapshot.
func (j *StockAlertJob) Scan(ctx context.Context) (dashboard.AlertSnapshot, error) {
	tokens, err := j.API.Login(ctx, j.Account.Username, j.Account.Password)
	if err != nil {
		return dashboard.AlertSnapshot{}, fmt.Errorf("stock alerts: login: %w", err)
	}
	gw := j.API.WithSession(gateway.NewMemoryStore(tokens))

	var (
		prods []products.Product
		mats  []materials.Material
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prods, err = products.Alerts(gctx, gw)
		return err
	})
	g.Go(func() error {
		var err error
		mats, err = materials.Alerts(gctx, gw)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboard.AlertSnapshot{}, fmt.Errorf("stock alerts: fetch: %w", err)
	}

	snap := dashboard.AlertSnapshot{CheckedAt: j.now(), Alerts: dashboard.Alerts(prods, mats)}
	j.Metrics.AddStockAlerts(dashboard.KindProduct, len(prods))
	j.Metrics.AddStockAlerts(dashboard.KindMaterial, len(mats))
	if err := j.Cache.Put(ctx, dashboard.SnapshotKey, snap, 0); err != nil {
		return dashboard.AlertSnapshot{}, fmt.Errorf("stock alerts: store snapshot: %w", err)
	}
	return snap, nil
}

func (j *StockAlertJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *StockAlertJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
