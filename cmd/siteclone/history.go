package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/siteclone/siteclone/internal/config"
	"github.com/siteclone/siteclone/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [host]",
		Short: "List past crawl runs",
		Long: `List crawl runs recorded in the run-history database, newest first.

With a host argument only that host's runs are shown. Use --run to print
the pages a specific run saved, in crawl order.`,
		Example: `  siteclone history
  siteclone history example.com
  siteclone history --run 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("run", "r", 0, "Show the pages saved by the run with this ID")
	cmd.Flags().IntP("limit", "n", 0, "Show at most this many runs (0 means all)")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cmd.Flags().String("db-dir", "", "Directory containing the history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd handles the history command execution.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	runID, err := cmd.Flags().GetInt64("run")
	if err != nil {
		return fmt.Errorf("failed to get run flag: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to get limit flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return fmt.Errorf("failed to get db-dir flag: %w", err)
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if runID > 0 {
		return showRunPages(cmd, db, runID, asJSON)
	}

	host := ""
	if len(args) > 0 {
		host = args[0]
	}
	return showRuns(cmd, db, host, limit, asJSON)
}

// showRuns lists stored runs, newest first.
func showRuns(cmd *cobra.Command, db *database.HistoryDB, host string, limit int, asJSON bool) error {
	runs, err := db.ListRuns(cmd.Context(), host)
	if err != nil {
		return err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runsToJSON(runs))
	}

	if len(runs) == 0 {
		if host != "" {
			fmt.Fprintf(out, "No runs recorded for %s.\n", host)
		} else {
			fmt.Fprintln(out, "No runs recorded yet.")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tHOST\tPAGES\tSTATUS")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%s (%s)\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.BaseHost,
			r.PagesCrawled,
			r.MaxPages,
			r.Status,
			r.StopReason,
		)
	}
	return w.Flush()
}

// showRunPages prints the pages one run saved, in crawl order.
func showRunPages(cmd *cobra.Command, db *database.HistoryDB, runID int64, asJSON bool) error {
	pages, err := db.GetRunPages(cmd.Context(), runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(pages)
	}

	if len(pages) == 0 {
		fmt.Fprintf(out, "No pages recorded for run %d.\n", runID)
		return nil
	}
	for i, u := range pages {
		fmt.Fprintf(out, "%3d. %s\n", i+1, u)
	}
	return nil
}

// historyRun is the JSON shape for one stored run.
type historyRun struct {
	ID           int64     `json:"id"`
	TargetURL    string    `json:"target_url"`
	BaseHost     string    `json:"base_host"`
	MaxPages     int       `json:"max_pages"`
	MaxDepth     int       `json:"max_depth"`
	PagesCrawled int       `json:"pages_crawled"`
	OutputDir    string    `json:"output_dir"`
	Status       string    `json:"status"`
	StopReason   string    `json:"stop_reason"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// runsToJSON converts RunRecords to their JSON shape. An empty slice is
// returned instead of nil so the output is always a JSON array.
func runsToJSON(runs []database.RunRecord) []historyRun {
	out := make([]historyRun, 0, len(runs))
	for _, r := range runs {
		out = append(out, historyRun{
			ID:           r.ID,
			TargetURL:    r.TargetURL,
			BaseHost:     r.BaseHost,
			MaxPages:     r.MaxPages,
			MaxDepth:     r.MaxDepth,
			PagesCrawled: r.PagesCrawled,
			OutputDir:    r.OutputDir,
			Status:       r.Status.String(),
			StopReason:   r.StopReason.String(),
			StartedAt:    r.StartedAt,
			FinishedAt:   r.FinishedAt,
		})
	}
	return out
}
