// Command retrievald runs the retrieval pipeline as an MCP server on stdio.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andozai/retrieval"
	"github.com/andozai/retrieval/common/logger"
	"github.com/andozai/retrieval/config"
	"github.com/andozai/retrieval/faq"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	faqPath := flag.String("faq", "", "path to a JSON file with curated FAQ entries")
	metricsAddr := flag.String("metrics-addr", "", "address for the Prometheus /metrics endpoint, empty disables it")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("main: loading .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	var entries []faq.Entry
	if *faqPath != "" {
		entries, err = loadFAQ(*faqPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load faq entries: %v\n", err)
			os.Exit(1)
		}
		logger.Infof("main: loaded %d faq entries from %s", len(entries), *faqPath)
	}

	client, err := retrieval.NewClient(context.Background(), cfg, entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()
	defer logger.Sync()

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Errorf("main: metrics endpoint: %v", err)
			}
		}()
	}

	if err := server.ServeStdio(retrieval.NewServer(client)); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
}

func loadFAQ(path string) ([]faq.Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []faq.Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
