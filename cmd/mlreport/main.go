// Command mlreport computes a MovieLens report described by a config file,
// renders it and optionally persists every row to a database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movielens/internal/config"
	"movielens/internal/metrics"
	"movielens/internal/metrics/datadog"
	"movielens/internal/metrics/prompush"

	// register all backends with the storage factory.
	_ "movielens/internal/storage/all"
)

func main() {
	var (
		cfgPath           string
		format            string
		outPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
		progress          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/reports/sample.json", "report config path (.json, .yaml or .yml)")
	flag.StringVar(&format, "format", "", "output format: text, json or xlsx (overrides output.format)")
	flag.StringVar(&outPath, "out", "", "output file (overrides output.path; empty writes to stdout)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend: prometheus, datadog or none (overrides metrics.backend and env METRICS_BACKEND)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides metrics.pushgateway_url and env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&progress, "progress", false, "show a progress bar while warming the enrichment cache")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	rep, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	if format != "" {
		rep.Output.Format = format
	}
	if outPath != "" {
		rep.Output.Path = outPath
	}

	issues := config.Validate(rep)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	flush := setupMetrics(rep, metricsBackendFlg, pushGatewayURLFlg, *verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	start := time.Now()

	err = run(ctx, rep, runOptions{progress: progress, verbose: *verbose})
	stop()
	flush()
	if err != nil {
		fatalf("mlreport: %v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// setupMetrics installs the selected backend and returns its flush func.
// Backend choice: flag, then config, then env METRICS_BACKEND.
func setupMetrics(rep config.Report, backendFlg, gwFlg string, verbose bool) func() {
	backendName := backendFlg
	if backendName == "" {
		backendName = rep.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	var (
		b   metrics.Backend
		err error
	)
	switch backendName {
	case "prometheus", "pushgateway":
		gwURL := gwFlg
		if gwURL == "" {
			gwURL = rep.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err = prompush.NewBackend(rep.Metrics.Job, gwURL)
		if err == nil {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, rep.Metrics.Job)
		}

	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       rep.Metrics.DogStatsDAddr,
			Namespace:  rep.Metrics.Namespace,
			GlobalTags: append([]string{"report:" + rep.Name}, rep.Metrics.Tags...),
		})
		if err == nil {
			log.Printf("metrics: backend=%v addr=%q", backendName, rep.Metrics.DogStatsDAddr)
		}

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}
		return func() {}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
		return func() {}
	}

	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", backendName, err)
		return func() {}
	}
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
