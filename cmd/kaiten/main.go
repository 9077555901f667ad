// Command kaiten runs a conveyor-belt restaurant simulation and prints the
// final report.
//
// Signals: SIGINT closes the restaurant (a second SIGINT evacuates it),
// SIGTERM evacuates it, SIGUSR1 and SIGUSR2 make the simulation faster or
// slower.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/kaiten"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/metrics"
	"github.com/viant/kaiten/report"
	"gopkg.in/yaml.v3"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := NewOptions()
	fs := pflag.NewFlagSet("kaiten", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	cfg, err := opts.Config(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	var serviceOptions []kaiten.Option
	var registry *prometheus.Registry
	if opts.MetricsOutput != "" {
		registry = prometheus.NewRegistry()
		serviceOptions = append(serviceOptions, kaiten.WithMetrics(registry))
	}
	srv, err := kaiten.New(cfg, serviceOptions...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer srv.Close(context.Background())

	stop := handleSignals(srv.Signals())
	defer stop()

	rep, err := srv.Run(ctx)
	if rep == nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fileSystem := afs.New()
	if err = publishReport(ctx, fileSystem, rep, opts, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if registry != nil {
		buffer := &bytes.Buffer{}
		if err = metrics.Write(buffer, registry); err == nil {
			err = fileSystem.Upload(ctx, opts.MetricsOutput, file.DefaultFileOsMode, buffer)
		}
		if err != nil {
			fmt.Fprintf(stderr, "failed to write metrics: %v\n", err)
			return 1
		}
	}
	return 0
}

func publishReport(ctx context.Context, fs afs.Service, rep *report.Report, opts *Options, stdout io.Writer) error {
	buffer := &bytes.Buffer{}
	var err error
	switch strings.ToLower(opts.ReportFormat) {
	case "json":
		encoder := json.NewEncoder(buffer)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(rep)
	case "yaml":
		err = yaml.NewEncoder(buffer).Encode(rep)
	default:
		err = rep.Write(buffer)
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if opts.ReportOutput == "" {
		_, err = stdout.Write(buffer.Bytes())
		return err
	}
	return fs.Upload(ctx, opts.ReportOutput, file.DefaultFileOsMode, buffer)
}

// handleSignals maps OS signals onto the simulation control state.
func handleSignals(signals *control.Signals) func() {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-ch:
				switch sig {
				case syscall.SIGINT:
					if signals.Terminating() {
						signals.Evacuate()
					} else {
						signals.Terminate()
					}
				case syscall.SIGTERM:
					signals.Evacuate()
				case syscall.SIGUSR1:
					signals.SetSpeed(faster(signals.Speed()))
				case syscall.SIGUSR2:
					signals.SetSpeed(slower(signals.Speed()))
				}
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func faster(speed control.Speed) control.Speed {
	if speed >= control.Fast {
		return control.Fast
	}
	return speed + 1
}

func slower(speed control.Speed) control.Speed {
	if speed <= control.Slow {
		return control.Slow
	}
	return speed - 1
}
