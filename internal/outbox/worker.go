// Package outbox dispatches durably stored booking events to NATS. The booking
// write path inserts into the availability_outbox table in the same transaction
// as the booking itself; this worker drains the table and publishes.
package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	dispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "availability_outbox_dispatched_total",
		Help: "Outbox events published to NATS.",
	})
	dispatchFailTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "availability_outbox_fail_total",
		Help: "Outbox events dropped after exhausting publish retries.",
	})
	dispatchLagSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "availability_outbox_lag_seconds",
		Help: "Age of the oldest event in the last dispatched batch.",
	})
)

// Config defines tunables for the dispatcher.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	RetryMax     int
}

type natsPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Dispatcher polls availability_outbox and publishes pending rows.
type Dispatcher struct {
	db        *sql.DB
	publisher natsPublisher
	logger    *zap.Logger
	cfg       Config
	tracer    trace.Tracer
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(db *sql.DB, conn *nats.Conn, logger *zap.Logger, cfg Config) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		db:        db,
		publisher: conn,
		logger:    logger,
		cfg:       cfg,
		tracer:    otel.Tracer("availability.outbox"),
	}
}

// Run starts the polling loop until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d.db == nil || d.publisher == nil {
		return errors.New("outbox dispatcher requires database and NATS connection")
	}
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if err := d.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("outbox batch failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

type row struct {
	ID        int64
	Subject   string
	Payload   []byte
	CreatedAt time.Time
}

func (d *Dispatcher) processOnce(ctx context.Context) error {
	ctx, span := d.tracer.Start(ctx, "outbox.batch")
	defer span.End()
	rows, tx, err := d.loadPending(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return tx.Commit()
	}
	ids := make([]int64, 0, len(rows))
	maxLag := 0.0
	for _, rec := range rows {
		if err := d.publishWithRetry(ctx, rec); err != nil {
			_ = tx.Rollback()
			return err
		}
		ids = append(ids, rec.ID)
		dispatchedTotal.Inc()
		if lag := time.Since(rec.CreatedAt).Seconds(); lag > maxLag {
			maxLag = lag
		}
	}
	dispatchLagSeconds.Set(maxLag)
	if err := d.markDispatched(ctx, tx, ids); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (d *Dispatcher) loadPending(ctx context.Context) ([]row, *sql.Tx, error) {
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	result, err := tx.QueryContext(ctx, `SELECT id, subject, payload, created_at FROM availability_outbox WHERE dispatched = false ORDER BY id LIMIT $1 FOR UPDATE SKIP LOCKED`, d.cfg.BatchSize)
	if err != nil {
		_ = tx.Rollback()
		return nil, nil, fmt.Errorf("select outbox: %w", err)
	}
	defer result.Close()
	var rows []row
	for result.Next() {
		var rec row
		if err := result.Scan(&rec.ID, &rec.Subject, &rec.Payload, &rec.CreatedAt); err != nil {
			_ = tx.Rollback()
			return nil, nil, fmt.Errorf("scan outbox: %w", err)
		}
		rows = append(rows, rec)
	}
	if err := result.Err(); err != nil {
		_ = tx.Rollback()
		return nil, nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return rows, tx, nil
}

func (d *Dispatcher) markDispatched(ctx context.Context, tx *sql.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf("UPDATE availability_outbox SET dispatched = true WHERE id IN (%s)", strings.Join(placeholders, ","))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark dispatched: %w", err)
	}
	return nil
}

func (d *Dispatcher) publishWithRetry(ctx context.Context, rec row) error {
	ctx, span := d.tracer.Start(ctx, "outbox.publish")
	defer span.End()
	if rec.Subject == "" {
		return errors.New("outbox row missing subject")
	}
	msg := nats.NewMsg(rec.Subject)
	msg.Data = rec.Payload
	if sc := span.SpanContext(); sc.IsValid() {
		msg.Header.Set("traceparent", fmt.Sprintf("00-%s-%s-01", sc.TraceID(), sc.SpanID()))
	}
	var attempt int
	for {
		attempt++
		err := d.publisher.PublishMsg(msg)
		if err == nil {
			return nil
		}
		d.logger.Warn("publish failed", zap.Error(err), zap.Int("attempt", attempt), zap.Int64("outbox_id", rec.ID))
		if attempt >= d.cfg.RetryMax {
			dispatchFailTotal.Inc()
			return fmt.Errorf("publish outbox %d: %w", rec.ID, err)
		}
		backoff := time.Duration(attempt*attempt) * 100 * time.Millisecond
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
