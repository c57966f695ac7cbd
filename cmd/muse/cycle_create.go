package main

import (
	"context"
	"fmt"

	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/types"
	"github.com/spf13/cobra"
)

var (
	createStartDate string
	createGoal      string
	createActivate  bool
)

var cycleCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new 12-week cycle",
	Long:  "Create a 12-week cycle starting on the given date. The end date is derived: start plus 83 days. Activating the new cycle deactivates any other.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCycleCreate,
}

func init() {
	cycleCreateCmd.Flags().StringVar(&createStartDate, "start", "",
		"Start date in YYYY-MM-DD form (default: today)")
	cycleCreateCmd.Flags().StringVar(&createGoal, "goal", "",
		"What this cycle is for")
	cycleCreateCmd.Flags().BoolVar(&createActivate, "activate", false,
		"Mark the new cycle as the active one")
}

func runCycleCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := context.Background()

	start := dates.Today()
	if createStartDate != "" {
		var err error
		start, err = dates.Parse(createStartDate)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
	}

	db, err := resolveStore()
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := db.InsertCycle(ctx, types.NewCycle{
		Name:      name,
		StartDate: start,
		Goal:      createGoal,
		IsActive:  createActivate,
	})
	if err != nil {
		return fmt.Errorf("create cycle: %w", err)
	}

	if cycleJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":         created.ID,
			"name":       created.Name,
			"start_date": created.StartDate.String(),
			"end_date":   created.EndDate.String(),
			"is_active":  created.IsActive,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created cycle %q (%s through %s)\n",
		created.Name, created.StartDate, created.EndDate)
	return nil
}
