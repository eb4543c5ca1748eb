package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// flakyPublisher fails the first failures calls, then succeeds.
type flakyPublisher struct {
	failures  int
	published []*nats.Msg
}

func (p *flakyPublisher) PublishMsg(msg *nats.Msg) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("nats: connection lost")
	}
	p.published = append(p.published, msg)
	return nil
}

func testDispatcher(pub natsPublisher, retryMax int) *Dispatcher {
	return &Dispatcher{
		publisher: pub,
		logger:    zap.NewNop(),
		cfg:       Config{PollInterval: time.Millisecond, BatchSize: 10, RetryMax: retryMax},
		tracer:    otel.Tracer("test"),
	}
}

func TestPublishWithRetryRecovers(t *testing.T) {
	pub := &flakyPublisher{failures: 2}
	d := testDispatcher(pub, 3)

	rec := row{ID: 7, Subject: "availability.events", Payload: []byte(`{"k":"v"}`), CreatedAt: time.Now()}
	require.NoError(t, d.publishWithRetry(context.Background(), rec))
	require.Len(t, pub.published, 1)
	require.Equal(t, "availability.events", pub.published[0].Subject)
	require.JSONEq(t, `{"k":"v"}`, string(pub.published[0].Data))
}

func TestPublishWithRetryGivesUp(t *testing.T) {
	pub := &flakyPublisher{failures: 100}
	d := testDispatcher(pub, 2)

	rec := row{ID: 8, Subject: "availability.events", CreatedAt: time.Now()}
	err := d.publishWithRetry(context.Background(), rec)
	require.Error(t, err)
	require.Empty(t, pub.published)
}

func TestPublishWithRetryRequiresSubject(t *testing.T) {
	d := testDispatcher(&flakyPublisher{}, 3)
	err := d.publishWithRetry(context.Background(), row{ID: 9})
	require.Error(t, err)
}

func TestPublishWithRetryHonoursCancellation(t *testing.T) {
	pub := &flakyPublisher{failures: 100}
	d := testDispatcher(pub, 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.publishWithRetry(ctx, row{ID: 10, Subject: "availability.events"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewDispatcherAppliesDefaults(t *testing.T) {
	d := NewDispatcher(nil, nil, nil, Config{})
	require.Equal(t, 200*time.Millisecond, d.cfg.PollInterval)
	require.Equal(t, 100, d.cfg.BatchSize)
	require.Equal(t, 3, d.cfg.RetryMax)

	require.Error(t, d.Run(context.Background()))
}
