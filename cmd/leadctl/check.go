package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/insurance-leadform/internal/app/bootstrap"
	"github.com/wolfman30/insurance-leadform/internal/fallback"
	"github.com/wolfman30/insurance-leadform/internal/sheets"
	"github.com/wolfman30/insurance-leadform/pkg/logging"
)

// connectFunc is swapped in tests.
var connectFunc = func(ctx context.Context, cfg sheets.Config, logger *logging.Logger) (*sheets.Worksheet, error) {
	return sheets.Connect(ctx, cfg, logger)
}

func newCheckCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the remote sheet and the fallback file are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runCheck(ctx, cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "connection timeout")
	return cmd
}

func runCheck(ctx context.Context, out io.Writer) error {
	pending, fallbackErr := checkFallback(cfg.FallbackCSVPath)
	if fallbackErr != nil {
		fmt.Fprintf(out, "fallback: FAIL %s: %v\n", cfg.FallbackCSVPath, fallbackErr)
	} else {
		fmt.Fprintf(out, "fallback: ok %s (%d leads)\n", cfg.FallbackCSVPath, pending)
	}

	sheetCfg, ok, err := bootstrap.SheetsConfig(cfg)
	if err != nil {
		fmt.Fprintf(out, "remote: FAIL %v\n", err)
		return err
	}
	if !ok {
		fmt.Fprintln(out, "remote: not configured (fallback-only mode)")
		return fallbackErr
	}

	ws, err := connectFunc(ctx, sheetCfg, logger)
	if err != nil {
		fmt.Fprintf(out, "remote: FAIL %v\n", err)
		return err
	}
	fmt.Fprintf(out, "remote: ok spreadsheet=%s worksheet=%s\n", ws.SpreadsheetID(), ws.Title())
	return fallbackErr
}

// checkFallback confirms the fallback location is writable and counts the
// leads already saved there.
func checkFallback(path string) (int, error) {
	if err := checkFallbackDir(path); err != nil {
		return 0, err
	}
	rows, err := fallback.NewCSVStore(path).ReadAll()
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows) - 1, nil
}

// checkFallbackDir confirms the fallback file's directory exists or can be
// created and accepts new files.
func checkFallbackDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".leadctl-check-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	_ = tmp.Close()
	return os.Remove(name)
}
