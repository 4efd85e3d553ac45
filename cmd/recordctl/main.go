package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/admin-records/internal/model"
	canonicalService "github.com/jwalitptl/admin-records/internal/service/canonical"
	"github.com/jwalitptl/admin-records/pkg/logger"
	"github.com/jwalitptl/admin-records/pkg/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "recordctl",
		Short:        "Canonicalize and serialize hospital records",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("entity", "", "record kind: patient, appointment, vitals, staff, payroll")
	rootCmd.PersistentFlags().Int("concurrency", canonicalService.DefaultConfig().Concurrency, "parallel workers for arrays")
	rootCmd.PersistentFlags().Bool("verbose", false, "log to stderr")
	_ = rootCmd.MarkPersistentFlagRequired("entity")

	rootCmd.AddCommand(canonicalizeCmd())
	rootCmd.AddCommand(serializeCmd())
	return rootCmd
}

func canonicalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "canonicalize [file]",
		Short: "Turn raw backend records into canonical entities",
		Long:  "Reads one raw record or an array of them from file, or stdin when file is omitted or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, entity, err := setup(cmd)
			if err != nil {
				return err
			}
			body, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			out, err := canonicalize(cmd.Context(), svc, entity, body)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func serializeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serialize [file]",
		Short: "Turn canonical entities back into the backend wire shape",
		Long:  "Reads one canonical entity or an array of them from file, or stdin when file is omitted or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, entity, err := setup(cmd)
			if err != nil {
				return err
			}
			body, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			out, err := serialize(cmd.Context(), svc, entity, body)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func setup(cmd *cobra.Command) (*canonicalService.Service, canonicalService.Entity, error) {
	name, _ := cmd.Flags().GetString("entity")
	entity, err := canonicalService.ParseEntity(name)
	if err != nil {
		return nil, "", err
	}

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	verbose, _ := cmd.Flags().GetBool("verbose")

	log := logger.Nop()
	if verbose {
		log = logger.NewLogger(&logger.Config{Level: logger.DebugLevel, Output: cmd.ErrOrStderr()})
	}

	cfg := canonicalService.DefaultConfig()
	cfg.Concurrency = concurrency
	// a file is bounded by the operator, not by the HTTP batch limit
	cfg.MaxBatch = int(^uint(0) >> 1)

	m := metrics.NewWithRegistry(prometheus.NewRegistry(), "recordctl", "canonical")
	return canonicalService.NewService(cfg, log, m), entity, nil
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	body, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return body, nil
}

func isArray(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func canonicalize(ctx context.Context, svc *canonicalService.Service, entity canonicalService.Entity, body []byte) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if isArray(body) {
		var raws []model.JSONMap
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, fmt.Errorf("input must be an array of objects: %w", err)
		}
		return svc.CanonicalizeBatch(ctx, entity, raws)
	}

	var raw model.JSONMap
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("input must be a JSON object or array: %w", err)
	}
	return svc.Canonicalize(ctx, entity, raw)
}

func serialize(ctx context.Context, svc *canonicalService.Service, entity canonicalService.Entity, body []byte) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !isArray(body) {
		return svc.Serialize(ctx, entity, body)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("input must be a JSON array: %w", err)
	}
	out := make([]model.JSONMap, len(items))
	for i, item := range items {
		wire, err := svc.Serialize(ctx, entity, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = wire
	}
	return out, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
