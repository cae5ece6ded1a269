// Package reporter renders terminal-friendly and machine-readable views of
// schedules, resource ledgers and allocation decisions.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/joshharrison/planloom/internal/assign"
	"github.com/joshharrison/planloom/internal/cpm"
	"github.com/joshharrison/planloom/internal/graph"
	"github.com/joshharrison/planloom/internal/ledger"
	"github.com/joshharrison/planloom/internal/phase"
	"github.com/joshharrison/planloom/internal/selector"
	"github.com/joshharrison/planloom/internal/ui"
)

// PrintSchedule writes a sequencing report: header totals, per-phase
// breakdown, and the critical path.
func PrintSchedule(w io.Writer, g *graph.Graph, res *cpm.Result, plan *phase.Plan) {
	fmt.Fprintf(w, "\n%s\n", ui.BoldCyan("Portfolio Schedule"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("══════════════════"))
	fmt.Fprintf(w, "Projects:  %d\n", plan.NumProjects)
	fmt.Fprintf(w, "Phases:    %d\n", plan.NumPhases)
	fmt.Fprintf(w, "Duration:  %s months\n\n", ui.Bold(trimFloat(plan.TotalDuration)))

	for _, ph := range plan.Phases {
		fmt.Fprintf(w, "  %s %d  %s\n",
			ui.BoldWhite("PHASE"), ph.Index+1,
			ui.Dim(fmt.Sprintf("[month %s - %s]", trimFloat(ph.StartMonth), trimFloat(ph.EndMonth))))
		for _, id := range ph.ProjectIDs {
			printScheduleRow(w, g, res, plan, id)
		}
		fmt.Fprintln(w)
	}

	if len(res.CriticalPath) > 0 {
		fmt.Fprintf(w, "Critical:  %s\n", ui.BoldYellow("⚡ "+strings.Join(res.CriticalPath, " → ")))
	}
}

func printScheduleRow(w io.Writer, g *graph.Graph, res *cpm.Result, plan *phase.Plan, id string) {
	e := res.Entries[id]
	te := plan.Timeline[id]

	critical := " "
	if e.IsCritical {
		critical = ui.BoldYellow("⚡")
	}

	slack := ""
	if !e.IsCritical {
		slack = ui.Dim(fmt.Sprintf("slack %s", trimFloat(e.Slack)))
	}

	fmt.Fprintf(w, "    %s %-14s %6sm  start %-5s %s\n",
		critical, ui.BoldMagenta(id),
		trimFloat(g.Projects[id].DurationMonths),
		trimFloat(te.StartMonth), slack)
}

// PrintLedger writes the resource utilization summary.
func PrintLedger(w io.Writer, rep *ledger.Report) {
	if len(rep.Summaries) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", ui.BoldCyan("Resource Utilization"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("────────────────────"))
	for _, s := range rep.Summaries {
		pct := fmt.Sprintf("%.0f%%", s.PeakUtilizationPct)
		flag := ""
		if s.Overallocated {
			flag = ui.BoldRed(" OVERALLOCATED")
		}
		fmt.Fprintf(w, "  %-14s peak %6.1f / %-6.1f (%s)  avg %5.1f%s\n",
			s.ResourceType, s.PeakUsage, s.Capacity,
			ui.UtilizationText(s.PeakUtilizationPct, pct), s.AvgUsage, flag)
	}
}

// PrintSelection writes a portfolio selection report.
func PrintSelection(w io.Writer, d *selector.Decision) {
	fmt.Fprintf(w, "\n%s\n", ui.BoldCyan("Portfolio Selection"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("═══════════════════"))
	fmt.Fprintf(w, "Status:    %s\n", ui.StatusText(string(d.Status)))
	if d.Message != "" {
		fmt.Fprintf(w, "Message:   %s\n", ui.Dim(d.Message))
	}
	if d.Status != selector.StatusSuccess {
		return
	}

	fmt.Fprintf(w, "Selected:  %d of %d\n", d.NumSelected, d.NumSelected+d.NumRejected)
	fmt.Fprintf(w, "NPV:       %s\n", ui.Bold(fmt.Sprintf("%.0f", d.TotalNPV)))
	fmt.Fprintf(w, "Cost:      %.0f\n", d.TotalCost)
	if d.NumSelected > 0 {
		fmt.Fprintf(w, "Strategic: %.0f avg\n", d.AvgStrategicScore)
		fmt.Fprintf(w, "Risk:      %.0f avg\n", d.AvgRisk)
	}
	fmt.Fprintln(w)

	for _, det := range d.Details {
		fmt.Fprintf(w, "  %s %-14s npv %-10.0f cost %-10.0f strategic %-4.0f risk %.0f\n",
			ui.Green("✓"), ui.BoldMagenta(det.ProjectID),
			det.NPV, det.Cost, det.StrategicScore, det.RiskScore)
	}
}

// PrintPlacement writes a location placement report including per-pool
// utilization.
func PrintPlacement(w io.Writer, p *assign.Placement) {
	fmt.Fprintf(w, "\n%s\n", ui.BoldCyan("Location Placement"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("══════════════════"))
	fmt.Fprintf(w, "Status:    %s\n", ui.StatusText(string(p.Status)))
	if p.Message != "" {
		fmt.Fprintf(w, "Message:   %s\n", ui.Dim(p.Message))
	}
	if p.Status != assign.StatusSuccess {
		return
	}

	fmt.Fprintf(w, "Placed:    %d projects\n", p.NumSelected)
	fmt.Fprintf(w, "NPV:       %s\n\n", ui.Bold(fmt.Sprintf("%.0f", p.TotalNPV)))

	for _, id := range p.SelectedIDs {
		fmt.Fprintf(w, "  %s %-14s → %s\n", ui.Green("✓"), ui.BoldMagenta(id), ui.Bold(p.Locations[id]))
	}

	locs := make([]string, 0, len(p.Utilization))
	for loc := range p.Utilization {
		locs = append(locs, loc)
	}
	sort.Strings(locs)

	fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("Pool usage"))
	for _, loc := range locs {
		types := make([]string, 0, len(p.Utilization[loc]))
		for rtype := range p.Utilization[loc] {
			types = append(types, rtype)
		}
		sort.Strings(types)
		for _, rtype := range types {
			u := p.Utilization[loc][rtype]
			pct := fmt.Sprintf("%.0f%%", u.UtilizationPct)
			fmt.Fprintf(w, "  %-8s %-14s %6.1f / %-6.1f (%s)\n",
				loc, rtype, u.Used, u.Capacity, ui.UtilizationText(u.UtilizationPct, pct))
		}
	}
}

// PrintIssues writes feasibility validation issues.
func PrintIssues(w io.Writer, rep *assign.FeasibilityReport) {
	if rep.Feasible {
		fmt.Fprintf(w, "%s all projects have a viable location\n", ui.Green("✓"))
		return
	}
	fmt.Fprintf(w, "%s\n", ui.BoldYellow(fmt.Sprintf("%d feasibility issues", len(rep.Issues))))
	for _, issue := range rep.Issues {
		fmt.Fprintf(w, "  %s %-22s %s %s\n",
			ui.Yellow("⚠"), issue.Type, ui.BoldMagenta(issue.ProjectID), ui.Dim(issue.Message))
	}
}

// ScheduleJSON returns the machine-readable sequencing result.
func ScheduleJSON(res *cpm.Result, plan *phase.Plan, rep *ledger.Report) ([]byte, error) {
	type entry struct {
		ProjectID      string  `json:"project_id"`
		EarliestStart  float64 `json:"earliest_start"`
		EarliestFinish float64 `json:"earliest_finish"`
		LatestStart    float64 `json:"latest_start"`
		LatestFinish   float64 `json:"latest_finish"`
		Slack          float64 `json:"slack"`
		IsCritical     bool    `json:"is_critical"`
	}
	type output struct {
		Status   string         `json:"status"`
		Plan     *phase.Plan    `json:"plan"`
		Schedule []entry        `json:"schedule_details"`
		Ledger   *ledger.Report `json:"resource_utilization,omitempty"`
	}

	o := output{Status: "SUCCESS", Plan: plan, Ledger: rep}
	for _, id := range res.Order {
		e := res.Entries[id]
		o.Schedule = append(o.Schedule, entry{
			ProjectID:      e.ProjectID,
			EarliestStart:  e.EarliestStart,
			EarliestFinish: e.EarliestFinish,
			LatestStart:    e.LatestStart,
			LatestFinish:   e.LatestFinish,
			Slack:          e.Slack,
			IsCritical:     e.IsCritical,
		})
	}
	return json.MarshalIndent(o, "", "  ")
}

// trimFloat formats a month value without trailing zeros.
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
