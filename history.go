package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/sadopc/zenfocus/internal/export"
	"github.com/sadopc/zenfocus/internal/phase"
	"github.com/sadopc/zenfocus/internal/store"
)

var (
	historyDays  int
	exportFormat string
	exportOut    string
	exportDays   int
	exportPhase  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show focus time per day",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the phase log",
	Long: `Export finished phases as CSV, JSON or YAML.

Without --out the file is written to the current directory as
zenfocus-export-<date>.<format>.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "number of days to show")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file")
	exportCmd.Flags().IntVar(&exportDays, "days", 0, "only phases from the last N days (0 = all)")
	exportCmd.Flags().StringVar(&exportPhase, "phase", "", "only this phase (focus, short_break, long_break)")
}

func openStore() (*store.Store, error) {
	cfg, _, err := cliContext()
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", historyDays)
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -historyDays)

	days, err := st.GetDailyFocus(start, end)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(days) == 0 {
		fmt.Printf("Nothing recorded in the last %d days.\n", historyDays)
		return nil
	}

	bold := color.New(color.Bold)
	bold.Printf("%-12s %10s %10s %10s\n", "Date", "Focus", "Breaks", "Completed")
	fmt.Println(color.HiBlackString(strings.Repeat("─", 45)))

	var focus, breaks int64
	var completed int
	for _, d := range days {
		focus += d.FocusSeconds
		breaks += d.BreakSeconds
		completed += d.FocusCompleted
		fmt.Printf("%-12s %s %s %10d\n", d.Date,
			color.CyanString("%10s", formatSeconds(d.FocusSeconds)),
			color.GreenString("%10s", formatSeconds(d.BreakSeconds)),
			d.FocusCompleted,
		)
	}
	fmt.Println(color.HiBlackString(strings.Repeat("─", 45)))
	bold.Printf("%-12s %10s %10s %10d\n", "Total", formatSeconds(focus), formatSeconds(breaks), completed)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(exportFormat)
	if format == "yml" {
		format = "yaml"
	}

	var filter store.PhaseFilter
	if exportPhase != "" {
		p, err := phase.Parse(exportPhase)
		if err != nil {
			return err
		}
		filter.Phase = string(p)
	}
	if exportDays > 0 {
		from := time.Now().UTC().AddDate(0, 0, -exportDays)
		filter.From = &from
	}

	path := exportOut
	if path == "" {
		path = fmt.Sprintf("zenfocus-export-%s.%s", time.Now().Format("2006-01-02"), format)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := export.FromStore(st, filter, format, path)
	if err != nil {
		return err
	}
	printStatus("✓", fmt.Sprintf("Exported %d phases to %s", n, path), color.FgGreen)
	return nil
}

func formatSeconds(secs int64) string {
	d := time.Duration(secs) * time.Second
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
