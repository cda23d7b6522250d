package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spachava753/pluginmatrix/internal/executor"
	"github.com/spachava753/pluginmatrix/internal/report"
)

var (
	runCases []string
	noColor  bool
)

var errMatrixFailed = errors.New("matrix failed")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every case against every version set",
	Args:  cobra.NoArgs,
	RunE:  runMatrix,
}

func init() {
	runCmd.Flags().StringSliceVar(&runCases, "case", nil, "Only run the named cases (repeatable)")
	runCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable styled output")
	rootCmd.AddCommand(runCmd)
}

func runMatrix(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	defer func() {
		signal.Stop(sigChan)
		cancel()
	}()

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("interrupt received, finishing current case...", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := executor.RunFromConfig(ctx, configPath, executor.RunOptions{Cases: runCases})
	if result != nil {
		fmt.Fprint(cmd.OutOrStdout(), "\n"+report.Render(result, !noColor))
	}
	if err != nil {
		slog.Error("matrix run failed", "error", err)
		return err
	}
	if !result.Passed() {
		return errMatrixFailed
	}
	return nil
}
