package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/kaiten/control"
)

const smallConfig = `
tables: [1, 2, 1, 1]
belt:
  capacity: 5
  rotation: 10ms
speed: fast
pollInterval: 2ms
arrival:
  groups: 3
  maxInterval: 2ms
  minDishes: 1
  maxDishes: 2
kitchen:
  thinkTime: 1ms
  jitter: 1ms
group:
  eatTime: 1ms
`

func TestOptions_Config(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, afs.New().Upload(ctx, "mem://localhost/cmd/config.yaml", file.DefaultFileOsMode, strings.NewReader(smallConfig)))

	testCases := []struct {
		description string
		args        []string
		expectErr   bool
		check       func(t *testing.T, opts *Options)
	}{
		{
			description: "flags override document",
			args:        []string{"--config", "mem://localhost/cmd/config.yaml", "--groups", "9", "--speed", "slow", "--stress"},
			check: func(t *testing.T, opts *Options) {
				cfg, err := opts.Config(ctx)
				require.NoError(t, err)
				assert.Equal(t, 9, cfg.Arrival.Groups)
				assert.Equal(t, "slow", cfg.Speed)
				assert.True(t, cfg.Kitchen.Stress)
				assert.Equal(t, 5, cfg.Belt.Capacity)
			},
		},
		{
			description: "unset flags keep document",
			args:        []string{"-c", "mem://localhost/cmd/config.yaml", "--trace-output", "/tmp/spans.json"},
			check: func(t *testing.T, opts *Options) {
				cfg, err := opts.Config(ctx)
				require.NoError(t, err)
				assert.Equal(t, 3, cfg.Arrival.Groups)
				assert.Equal(t, "fast", cfg.Speed)
				assert.True(t, cfg.Tracing.Enabled)
			},
		},
		{
			description: "defaults need an arrival bound",
			args:        []string{},
			check: func(t *testing.T, opts *Options) {
				_, err := opts.Config(ctx)
				assert.Error(t, err)
			},
		},
		{
			description: "bad report format",
			args:        []string{"--report-format", "xml"},
			expectErr:   true,
		},
		{
			description: "negative groups",
			args:        []string{"--groups", "-1"},
			expectErr:   true,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			opts := NewOptions()
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			opts.AddFlags(fs)
			require.NoError(t, fs.Parse(testCase.args))
			err := opts.Validate()
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			testCase.check(t, opts)
		})
	}
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/cmd/run.yaml", file.DefaultFileOsMode, strings.NewReader(smallConfig)))

	testCases := []struct {
		description string
		args        []string
		expectCode  int
		expectOut   string
	}{
		{
			description: "text report",
			args:        []string{"--config", "mem://localhost/cmd/run.yaml", "--log-format", "json", "--metrics-output", "mem://localhost/cmd/metrics.txt"},
			expectOut:   "+ MATCH",
		},
		{
			description: "json report",
			args:        []string{"--config", "mem://localhost/cmd/run.yaml", "--report-format", "json"},
			expectOut:   `"revenue"`,
		},
		{
			description: "init failure",
			args:        []string{"--config", "mem://localhost/cmd/absent.yaml"},
			expectCode:  1,
		},
		{
			description: "unknown flag",
			args:        []string{"--no-such-flag"},
			expectCode:  1,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
			code := run(ctx, testCase.args, stdout, stderr)
			assert.Equal(t, testCase.expectCode, code, stderr.String())
			if testCase.expectOut != "" {
				assert.Contains(t, stdout.String(), testCase.expectOut)
			}
		})
	}
	metricsText, err := fs.DownloadWithURL(ctx, "mem://localhost/cmd/metrics.txt")
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), "kaiten_revenue_total")
}

func TestSpeedSteps(t *testing.T) {
	assert.Equal(t, control.Fast, faster(control.Normal))
	assert.Equal(t, control.Fast, faster(control.Fast))
	assert.Equal(t, control.Slow, slower(control.Normal))
	assert.Equal(t, control.Slow, slower(control.Slow))
}
