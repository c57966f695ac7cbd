package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/beccaroth/muse/internal/config"
	"github.com/beccaroth/muse/internal/store"
	"github.com/spf13/cobra"
)

var (
	cycleDBOverride string
	cycleJSONOutput bool
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Manage 12-week cycles",
	Long:  "List and create 12-week planning cycles without running the server.",
}

func init() {
	cycleCmd.PersistentFlags().StringVar(&cycleDBOverride, "db", "",
		"Database path (overrides config and MUSE_DB_PATH)")
	cycleCmd.PersistentFlags().BoolVar(&cycleJSONOutput, "json", false,
		"Output in JSON format")

	cycleCmd.AddCommand(cycleListCmd)
	cycleCmd.AddCommand(cycleCreateCmd)
}

// resolveStore opens the SQLite store from config with optional --db override.
func resolveStore() (*store.SQLiteStore, error) {
	dbPath := cycleDBOverride
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		dbPath = cfg.Database.Path
	}

	return store.NewSQLiteStore(dbPath)
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
