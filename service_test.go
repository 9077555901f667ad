package kaiten_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kaiten"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/metrics"
	"github.com/viant/kaiten/service/manager"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func fastConfig(groups int) *kaiten.Config {
	cfg := kaiten.DefaultConfig()
	cfg.Tables = []int{1, 2, 2, 2}
	cfg.Belt = kaiten.BeltConfig{Capacity: 6, Rotation: 10 * time.Millisecond}
	cfg.Queue = kaiten.QueueConfig{MaxNormal: 3, MaxVIP: 2}
	cfg.Speed = "fast"
	cfg.PollInterval = 2 * time.Millisecond
	cfg.Arrival.Groups = groups
	cfg.Arrival.MaxInterval = 2 * time.Millisecond
	cfg.Arrival.MinDishes = 1
	cfg.Arrival.MaxDishes = 3
	cfg.Arrival.VIPChance = 0.3
	cfg.Arrival.Seed = 42
	cfg.Kitchen.ThinkTime = time.Millisecond
	cfg.Kitchen.Jitter = time.Millisecond
	cfg.Group.EatTime = time.Millisecond
	cfg.Group.OrderChance = 0.3
	cfg.Allocator.SweepInterval = 10 * time.Millisecond
	return cfg
}

func TestService_Run(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	registry := prometheus.NewRegistry()
	srv, err := kaiten.New(fastConfig(8),
		kaiten.WithLogger(logr.Discard()),
		kaiten.WithRunID("run-test"),
		kaiten.WithMetrics(registry),
		kaiten.WithTracingExporter("kaiten", "test", exporter))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	actual, err := srv.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, actual)

	assert.Equal(t, "run-test", actual.RunID)
	assert.False(t, actual.Evacuated)
	assert.True(t, actual.Balanced(), strings.Join(actual.Mismatches(), "\n"))
	assert.EqualValues(t, 8, actual.Visits.Created)
	assert.EqualValues(t, 8, actual.Visits.Finished)
	assert.Equal(t, 8, actual.Visits.Paid)
	assert.Equal(t, actual.Totals.SoldValue, actual.Revenue)
	assert.True(t, srv.Signals().Terminating())
	assert.NoError(t, srv.Runtime().State().Check())
	assert.Equal(t, 0, srv.Runtime().Supervisor().Len())

	names := map[string]bool{}
	for _, span := range exporter.GetSpans() {
		names[span.Name] = true
	}
	assert.True(t, names["simulation.run"])
	assert.True(t, names["group.visit"])

	out := &strings.Builder{}
	require.NoError(t, metrics.Write(out, registry))
	assert.Contains(t, out.String(), "kaiten_dishes_total")
	assert.Contains(t, out.String(), `kaiten_visit_duration_seconds_count{state="finished"} 8`)

	_, err = srv.Run(ctx)
	assert.Error(t, err)
	assert.NoError(t, srv.Close(ctx))
}

func TestService_RunEvacuated(t *testing.T) {
	cfg := fastConfig(200)
	cfg.Group.EatTime = 20 * time.Millisecond
	cfg.Schedule = manager.Schedule{
		{After: 5 * time.Millisecond, Action: manager.ActionSlow},
		{After: 40 * time.Millisecond, Action: manager.ActionEvacuate},
	}
	srv, err := kaiten.New(cfg, kaiten.WithLogger(logr.Discard()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	actual, err := srv.Run(ctx)
	require.NoError(t, err)
	assert.True(t, actual.Evacuated)
	assert.True(t, actual.Balanced(), strings.Join(actual.Mismatches(), "\n"))
	assert.Less(t, actual.Visits.Created, int64(200))
	assert.Equal(t, control.Slow, srv.Signals().Speed())
	guests, _ := srv.Runtime().State().Guests()
	assert.Equal(t, 0, guests)
}

func TestService_RunTerminatedBySignal(t *testing.T) {
	cfg := fastConfig(0)
	cfg.Arrival.ClosingAfter = time.Hour
	signals := control.New(control.Fast, 2*time.Millisecond)
	srv, err := kaiten.New(cfg, kaiten.WithLogger(logr.Discard()), kaiten.WithSignals(signals))
	require.NoError(t, err)
	time.AfterFunc(30*time.Millisecond, signals.Terminate)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	actual, err := srv.Run(ctx)
	require.NoError(t, err)
	assert.False(t, actual.Evacuated)
	assert.True(t, actual.Balanced(), strings.Join(actual.Mismatches(), "\n"))
	assert.Equal(t, actual.Visits.Created, actual.Visits.Finished+actual.Visits.Rejected+actual.Visits.Interrupted)
}

func TestNew(t *testing.T) {
	cfg := kaiten.DefaultConfig()
	_, err := kaiten.New(cfg)
	assert.ErrorIs(t, err, kaiten.ErrInit)

	cfg.Arrival.Groups = 1
	cfg.Logging.Format = "xml"
	_, err = kaiten.New(cfg)
	assert.ErrorIs(t, err, kaiten.ErrInit)
}
