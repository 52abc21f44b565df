package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/infra/storage"
	"github.com/vietddude/finecheck/internal/infra/storage/postgres"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <plate>",
	Short: "Show past lookups for a plate",
	Args:  cobra.ExactArgs(1),
	Run:   runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", storage.DefaultHistoryLimit, "maximum number of lookups to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg := mustLoad(cmd, true)
	if !cfg.Database.Enabled() {
		slog.Error("History needs a database; set database.url in the config")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := domain.ValidatePlate(args[0]); err != nil {
		slog.Error("Invalid plate", "error", err)
		os.Exit(1)
	}

	entries, err := postgres.NewHistoryRepo(db).ListByPlate(ctx, domain.CleanPlate(args[0]), historyLimit)
	if err != nil {
		slog.Error("Failed to query history", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TIME\tPLATE\tTYPE\tRESULT\tVIOLATIONS\tCACHED\tDURATION")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\t%s\n",
			e.CreatedAt.Local().Format(time.RFC3339),
			e.Plate,
			e.VehicleType,
			resultLabel(e),
			len(e.Records),
			e.Cached,
			time.Duration(e.DurationMS)*time.Millisecond,
		)
	}
	_ = w.Flush()
}

func resultLabel(e domain.LookupEntry) string {
	if e.Error {
		return e.Message
	}
	return "ok"
}
