package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshharrison/planloom/internal/assign"
	"github.com/joshharrison/planloom/internal/cpm"
	"github.com/joshharrison/planloom/internal/graph"
	"github.com/joshharrison/planloom/internal/ledger"
	"github.com/joshharrison/planloom/internal/phase"
	"github.com/joshharrison/planloom/internal/portfolio"
	"github.com/joshharrison/planloom/internal/reporter"
	"github.com/joshharrison/planloom/internal/selector"
	"github.com/joshharrison/planloom/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var se *statusError
		if errors.As(err, &se) {
			os.Exit(se.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "planloom",
		Short: "Schedule and allocate a project portfolio",
		Long: `Planloom sequences interdependent projects into a feasible timeline via
critical path analysis, and selects/places projects under budget, risk and
per-site capacity constraints via binary linear optimization.

Input is a portfolio JSON document with projects, optional resource pools
and optional portfolio-wide resource capacities.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var machine bool
	rootCmd.PersistentFlags().BoolVar(&machine, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(sequenceCmd(&machine))
	rootCmd.AddCommand(selectCmd(&machine))
	rootCmd.AddCommand(assignCmd(&machine))

	return rootCmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <portfolio.json>",
		Short: "Validate the dependency graph and location feasibility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := portfolio.LoadFile(args[0])
			if err != nil {
				return err
			}

			g := graph.New()
			for _, p := range pf.Projects {
				if err := g.Add(p); err != nil {
					return err
				}
			}
			if err := g.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ui.BoldRed("✗"), err)
				return &statusError{status: "INVALID_GRAPH", code: 1}
			}
			fmt.Printf("%s dependency graph is a valid DAG (%d projects)\n", ui.Green("✓"), g.Count())

			if len(pf.Pools) > 0 {
				a, err := assign.New(pf.Projects, pf.Pools)
				if err != nil {
					return err
				}
				reporter.PrintIssues(os.Stdout, a.ValidateFeasibility())
			}
			return nil
		},
	}
}

func sequenceCmd(machine *bool) *cobra.Command {
	var maxParallel int

	cmd := &cobra.Command{
		Use:   "sequence <portfolio.json>",
		Short: "Order projects into phases via critical path analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := portfolio.LoadFile(args[0])
			if err != nil {
				return err
			}

			g, err := graph.Build(pf.Projects)
			if err != nil {
				return fmt.Errorf("build dependency graph: %w", err)
			}

			res, err := cpm.Analyze(g)
			if err != nil {
				return fmt.Errorf("critical path analysis: %w", err)
			}

			plan, err := phase.Build(g, res, phase.Options{MaxParallel: maxParallel})
			if err != nil {
				return fmt.Errorf("build phases: %w", err)
			}

			rep := ledger.Compute(g.Projects, plan, pf.Capacities)

			if *machine {
				out, err := reporter.ScheduleJSON(res, plan, rep)
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			reporter.PrintSchedule(os.Stdout, g, res, plan)
			reporter.PrintLedger(os.Stdout, rep)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxParallel, "max-parallel", phase.DefaultMaxParallel, "Max concurrent projects per phase")
	return cmd
}

func selectCmd(machine *bool) *cobra.Command {
	var (
		budget        float64
		maxConcurrent int
		maxRisk       float64
		objective     string
		npvWeight     float64
		stratWeight   float64
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "select <portfolio.json>",
		Short: "Choose a value-maximizing portfolio subset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := portfolio.LoadFile(args[0])
			if err != nil {
				return err
			}

			obj, err := parseSelectObjective(objective)
			if err != nil {
				return err
			}

			candidates := make([]selector.Candidate, 0, len(pf.Projects))
			for _, p := range pf.Projects {
				candidates = append(candidates, selector.Candidate{
					ID:             p.ID,
					Cost:           p.Cost,
					NPV:            p.NPV,
					StrategicScore: p.StrategicValue,
					RiskScore:      p.RiskScore,
					PriorityScore:  p.PriorityScore,
				})
			}

			ctx, cancel := solveContext(timeout)
			defer cancel()

			decision, err := selector.Select(ctx, candidates, selector.Constraints{
				TotalBudget:           budget,
				MaxConcurrentProjects: maxConcurrent,
				MaxAvgRisk:            maxRisk,
			}, selector.Options{
				Objective: obj,
				Weights:   selector.Weights{NPV: npvWeight, Strategic: stratWeight},
			})
			if err != nil {
				return fmt.Errorf("optimize selection: %w", err)
			}

			if *machine {
				if err := printJSON(decision); err != nil {
					return err
				}
			} else {
				reporter.PrintSelection(os.Stdout, decision)
			}
			return statusErr(string(decision.Status))
		},
	}
	cmd.Flags().Float64Var(&budget, "budget", 0, "Total budget cap (0 disables)")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Max selected projects (0 disables)")
	cmd.Flags().Float64Var(&maxRisk, "max-risk", 0, "Max average risk score (0 disables)")
	cmd.Flags().StringVar(&objective, "objective", "npv", "Objective: npv, strategic or balanced")
	cmd.Flags().Float64Var(&npvWeight, "npv-weight", 0, "NPV weight for balanced objective")
	cmd.Flags().Float64Var(&stratWeight, "strategic-weight", 0, "Strategic weight for balanced objective")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Solver timeout")
	return cmd
}

func assignCmd(machine *bool) *cobra.Command {
	var (
		objective   string
		maxProjects int
		localBonus  float64
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "assign <portfolio.json>",
		Short: "Place selected projects onto location resource pools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := portfolio.LoadFile(args[0])
			if err != nil {
				return err
			}

			obj, err := parseAssignObjective(objective)
			if err != nil {
				return err
			}

			a, err := assign.New(pf.Projects, pf.Pools)
			if err != nil {
				return err
			}

			feasibility := a.ValidateFeasibility()
			if !*machine {
				reporter.PrintIssues(os.Stdout, feasibility)
			}

			ctx, cancel := solveContext(timeout)
			defer cancel()

			placement, err := a.Optimize(ctx, assign.Options{
				Objective:      obj,
				MaxProjects:    maxProjects,
				PreferredBonus: localBonus,
			})
			if err != nil {
				return fmt.Errorf("optimize placement: %w", err)
			}

			if *machine {
				if err := printJSON(struct {
					Feasibility *assign.FeasibilityReport `json:"feasibility"`
					Placement   *assign.Placement         `json:"placement"`
				}{feasibility, placement}); err != nil {
					return err
				}
			} else {
				reporter.PrintPlacement(os.Stdout, placement)
			}
			return statusErr(string(placement.Status))
		},
	}
	cmd.Flags().StringVar(&objective, "objective", "value", "Objective: value, npv or cost")
	cmd.Flags().IntVar(&maxProjects, "max-projects", 0, "Max placed projects (0 disables)")
	cmd.Flags().Float64Var(&localBonus, "local-bonus", 0, "Preferred-location bonus multiplier (0 = default 1.1, 1 disables)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Solver timeout")
	return cmd
}

func solveContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}

func parseSelectObjective(s string) (selector.Objective, error) {
	switch s {
	case "npv", "maximize_npv":
		return selector.MaximizeNPV, nil
	case "strategic", "maximize_strategic":
		return selector.MaximizeStrategic, nil
	case "balanced":
		return selector.Balanced, nil
	default:
		return 0, fmt.Errorf("unknown objective %q (want npv, strategic or balanced)", s)
	}
}

func parseAssignObjective(s string) (assign.Objective, error) {
	switch s {
	case "value", "maximize_value":
		return assign.MaximizeValue, nil
	case "npv", "maximize_npv":
		return assign.MaximizeNPV, nil
	case "cost", "minimize_cost":
		return assign.MinimizeCost, nil
	default:
		return 0, fmt.Errorf("unknown objective %q (want value, npv or cost)", s)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// statusError carries the process exit code for a run that completed but
// ended in a failing terminal status. The report has already been printed
// by the time it is returned, so main exits without printing it again.
type statusError struct {
	status string
	code   int
}

func (e *statusError) Error() string { return e.status }

// statusErr maps a terminal optimization status to the command outcome:
// infeasible and timed-out runs fail with exit code 2.
func statusErr(status string) error {
	switch status {
	case "INFEASIBLE", "TIMED_OUT":
		return &statusError{status: status, code: 2}
	}
	return nil
}
