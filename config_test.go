package kaiten_test

import (
	"context"
	"embed"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"
	"github.com/viant/afs/file"
	"github.com/viant/kaiten"
	"github.com/viant/kaiten/service/manager"
)

//go:embed testdata/*
var embedFS embed.FS

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/kaiten/partial.yaml", file.DefaultFileOsMode,
		strings.NewReader("belt:\n  capacity: 3\narrival:\n  groups: 2\n")))
	require.NoError(t, fs.Upload(ctx, "mem://localhost/kaiten/invalid.yaml", file.DefaultFileOsMode,
		strings.NewReader("tables: [0, 0, 0, 0]\narrival:\n  groups: 2\n")))
	require.NoError(t, fs.Upload(ctx, "mem://localhost/kaiten/broken.yaml", file.DefaultFileOsMode,
		strings.NewReader("belt: [")))

	testCases := []struct {
		description string
		URL         string
		expectErr   bool
		check       func(t *testing.T, cfg *kaiten.Config)
	}{
		{
			description: "partial document keeps defaults",
			URL:         "mem://localhost/kaiten/partial.yaml",
			check: func(t *testing.T, cfg *kaiten.Config) {
				assert.Equal(t, 3, cfg.Belt.Capacity)
				assert.Equal(t, 500*time.Millisecond, cfg.Belt.Rotation)
				assert.Equal(t, []int{4, 4, 4, 4}, cfg.Tables)
				assert.Equal(t, 2, cfg.Arrival.Groups)
				assert.Equal(t, 3, cfg.Arrival.MinDishes)
			},
		},
		{
			description: "embedded full document",
			URL:         "embed:///testdata/config.yaml",
			check: func(t *testing.T, cfg *kaiten.Config) {
				assert.Equal(t, [4]int{1, 2, 2, 1}, cfg.TableCounts())
				assert.Equal(t, "fast", cfg.Speed)
				assert.Equal(t, 5*time.Millisecond, cfg.PollInterval)
				assert.Equal(t, uint64(7), cfg.Arrival.Seed)
				require.NotNil(t, cfg.Policy)
				assert.Equal(t, 2, cfg.Policy.VIPBurst)
				assert.Equal(t, manager.Schedule{{After: 5 * time.Millisecond, Action: manager.ActionNormal}}, cfg.Schedule)
			},
		},
		{description: "no tables", URL: "mem://localhost/kaiten/invalid.yaml", expectErr: true},
		{description: "malformed", URL: "mem://localhost/kaiten/broken.yaml", expectErr: true},
		{description: "missing", URL: "mem://localhost/kaiten/missing.yaml", expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			cfg, err := kaiten.LoadConfig(ctx, testCase.URL, &embedFS)
			if testCase.expectErr {
				assert.ErrorIs(t, err, kaiten.ErrInit)
				return
			}
			require.NoError(t, err)
			testCase.check(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(cfg *kaiten.Config)
		expectErr   bool
	}{
		{description: "default with groups", mutate: func(cfg *kaiten.Config) {}},
		{description: "no arrival bound", mutate: func(cfg *kaiten.Config) { cfg.Arrival.Groups = 0 }, expectErr: true},
		{description: "three table sizes", mutate: func(cfg *kaiten.Config) { cfg.Tables = []int{1, 1, 1} }, expectErr: true},
		{description: "zero belt", mutate: func(cfg *kaiten.Config) { cfg.Belt.Capacity = 0 }, expectErr: true},
		{description: "unknown speed", mutate: func(cfg *kaiten.Config) { cfg.Speed = "warp" }, expectErr: true},
		{description: "barrier above groups", mutate: func(cfg *kaiten.Config) { cfg.Queue.Barrier = 11 }, expectErr: true},
		{description: "bad schedule", mutate: func(cfg *kaiten.Config) {
			cfg.Schedule = manager.Schedule{{Action: "dance"}}
		}, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			cfg := kaiten.DefaultConfig()
			cfg.Arrival.Groups = 10
			testCase.mutate(cfg)
			err := cfg.Validate()
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
