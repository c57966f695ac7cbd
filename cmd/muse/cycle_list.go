package main

import (
	"context"
	"fmt"

	"github.com/beccaroth/muse/internal/cycle"
	"github.com/beccaroth/muse/internal/dates"
	"github.com/spf13/cobra"
)

var cycleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cycles",
	Args:  cobra.NoArgs,
	RunE:  runCycleList,
}

func runCycleList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, err := resolveStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cycles, err := db.ListCycles(ctx)
	if err != nil {
		return fmt.Errorf("list cycles: %w", err)
	}

	today := dates.Today()

	if cycleJSONOutput {
		items := make([]map[string]any, len(cycles))
		for i, c := range cycles {
			item := map[string]any{
				"id":         c.ID,
				"name":       c.Name,
				"start_date": c.StartDate.String(),
				"end_date":   c.EndDate.String(),
				"is_active":  c.IsActive,
				"progress":   cycle.Progress(c, today),
			}
			if week, ok := cycle.WeekNumber(today, c); ok {
				item["current_week"] = week
			}
			items[i] = item
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"cycles": items,
			"total":  len(items),
		})
	}

	if len(cycles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No cycles found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tNAME\tSTART\tEND\tWEEK\tPROGRESS\tACTIVE")
	for _, c := range cycles {
		week := "-"
		if n, ok := cycle.WeekNumber(today, c); ok {
			week = fmt.Sprintf("%d", n)
		}
		active := ""
		if c.IsActive {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d%%\t%s\n",
			c.ID,
			c.Name,
			c.StartDate,
			c.EndDate,
			week,
			cycle.Progress(c, today),
			active,
		)
	}
	w.Flush()

	return nil
}
