package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/custodia-labs/sercha-estimator/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("sercha-estimator starting", "version", version)

	a, err := newApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	server := httpadapter.NewServer(httpadapter.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
	}, a.estimate, a.chat, a.status)

	return server.Run(ctx)
}

var estimateFlags struct {
	file      string
	rate      float64
	narrative bool
	json      bool
}

var estimateCmd = &cobra.Command{
	Use:   "estimate [requirements...]",
	Short: "Estimate requirements once and print the breakdown",
	Example: `  sercha-estimator estimate "Customer app with login and Stripe checkout"
  sercha-estimator estimate --file brief.pdf --rate 45 --narrative`,
	RunE: runEstimate,
}

func init() {
	f := estimateCmd.Flags()
	f.StringVarP(&estimateFlags.file, "file", "f", "", "requirements document (pdf, docx, doc or txt)")
	f.Float64VarP(&estimateFlags.rate, "rate", "r", 0, "hourly rate (default from config)")
	f.BoolVar(&estimateFlags.narrative, "narrative", false, "include the consultant narrative")
	f.BoolVar(&estimateFlags.json, "json", false, "print the full result as JSON")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if estimateFlags.rate < 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidHourlyRate, estimateFlags.rate)
	}
	req := domain.EstimateRequest{
		Requirements:     strings.Join(args, " "),
		HourlyRate:       estimateFlags.rate,
		IncludeNarrative: estimateFlags.narrative,
	}
	if estimateFlags.file != "" {
		content, err := os.ReadFile(estimateFlags.file)
		if err != nil {
			return fmt.Errorf("read requirements file: %w", err)
		}
		req.FileName = filepath.Base(estimateFlags.file)
		req.FileContent = content
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.estimate.Estimate(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if estimateFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Rounded())
	}
	printEstimate(out, result.Rounded())
	return nil
}

func printEstimate(w io.Writer, r *domain.EstimateResult) {
	fmt.Fprintf(w, "Extraction stage: %s\n", r.Stage)
	fmt.Fprintf(w, "Hourly rate: $%.2f (buffer %.0f%%)\n\n", r.HourlyRate, r.BufferPercentage)

	fmt.Fprintln(w, "Breakdown:")
	for _, line := range r.Breakdown {
		fmt.Fprintf(w, "  - %s [%s]: %.2f-%.2f hours, $%.2f-$%.2f\n",
			line.Feature, line.Complexity, line.TimeMin, line.TimeMax, line.CostMin, line.CostMax)
	}

	t := r.Totals
	fmt.Fprintf(w, "\nTotal: %.2f-%.2f hours, $%.2f-$%.2f\n", t.TimeMin, t.TimeMax, t.CostMin, t.CostMax)
	fmt.Fprintf(w, "Timeline: %s\n", r.Timeline)

	if len(r.Assumptions) > 0 {
		fmt.Fprintln(w, "\nAssumptions:")
		for _, a := range r.Assumptions {
			fmt.Fprintf(w, "  - %s\n", a)
		}
	}
	if r.Narrative != "" {
		fmt.Fprintf(w, "\nNarrative:\n%s\n", r.Narrative)
	}
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load the reference documents and build the context index",
	Long: `Builds the context index and reports passage counts. With the postgres
vector backend this pre-populates the shared index for API replicas.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.runtime.EmbeddingService() == nil {
		return fmt.Errorf("%w: no embedding service configured", domain.ErrIndexUnavailable)
	}
	if err := a.index.Build(ctx, a.docs.All()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d passages from %d documents (%s backend)\n",
		a.index.Count(), a.docs.Len(), cfg.Storage.VectorBackend)
	return nil
}
