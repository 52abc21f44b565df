package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vietddude/finecheck/internal/control"
	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/lookup"
)

var (
	checkType string
	checkJSON bool
)

var checkCmd = &cobra.Command{
	Use:   "check <plate>",
	Short: "Look up violations for a plate and print the result",
	Args:  cobra.ExactArgs(1),
	Run:   runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkType, "type", "", "vehicle type: 1 (car) or 2 (motorbike); inferred when empty")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg := mustLoad(cmd, true)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := control.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize finecheck", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	entry, err := app.Service().Check(ctx, args[0], domain.VehicleType(checkType))
	if err != nil {
		slog.Error("Check failed", "plate", args[0], "error", err)
		os.Exit(1)
	}

	format := lookup.FormatText
	if checkJSON {
		format = lookup.FormatJSON
	}
	out, err := lookup.Render(entry.Plate, entry.Result(), format)
	if err != nil {
		slog.Error("Failed to render result", "error", err)
		os.Exit(1)
	}
	_, _ = fmt.Fprintln(os.Stdout, out)

	if entry.Error {
		os.Exit(2)
	}
}
