package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"github.com/wms/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// EnableDBTracing installs the otelgorm plugin and flags slow statements on
// their spans. Query variables are left out of spans unless full SQL logging
// is enabled.
func EnableDBTracing(db *gorm.DB, cfg config.TelemetryConfig, dbSystem string, logger *zap.Logger) error {
	if !cfg.DBTraceEnabled {
		return nil
	}

	threshold := cfg.DBSlowQueryThresh
	if threshold <= 0 {
		threshold = 200 * time.Millisecond
	}
	// registered ahead of the plugin so the span is still open in the after hooks
	if err := registerSlowQueryCallbacks(db, threshold); err != nil {
		return err
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(dbSystem)}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", dbSystem),
		zap.Duration("slow_query_threshold", threshold),
	)
	return nil
}

func registerSlowQueryCallbacks(db *gorm.DB, threshold time.Duration) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { markSlowQuery(tx, threshold) }

	cb := db.Callback()
	steps := []struct {
		name string
		err  error
	}{
		{"create", cb.Create().Before("gorm:create").Register("wms:start_create", before)},
		{"create", cb.Create().After("gorm:create").Register("wms:slow_create", after)},
		{"query", cb.Query().Before("gorm:query").Register("wms:start_query", before)},
		{"query", cb.Query().After("gorm:query").Register("wms:slow_query", after)},
		{"update", cb.Update().Before("gorm:update").Register("wms:start_update", before)},
		{"update", cb.Update().After("gorm:update").Register("wms:slow_update", after)},
		{"delete", cb.Delete().Before("gorm:delete").Register("wms:start_delete", before)},
		{"delete", cb.Delete().After("gorm:delete").Register("wms:slow_delete", after)},
		{"row", cb.Row().Before("gorm:row").Register("wms:start_row", before)},
		{"row", cb.Row().After("gorm:row").Register("wms:slow_row", after)},
	}
	for _, s := range steps {
		if s.err != nil {
			return s.err
		}
	}
	return nil
}

func markSlowQuery(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
