package ui

import "github.com/fatih/color"

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// StatusText returns a colored optimization status string.
func StatusText(status string) string {
	switch status {
	case "SUCCESS":
		return BoldGreen(status)
	case "INFEASIBLE":
		return BoldRed(status)
	case "TIMED_OUT":
		return Yellow(status)
	case "NO_DEMANDS":
		return Dim(status)
	default:
		return status
	}
}

// UtilizationText colors a utilization percentage: red when over capacity,
// yellow when close, green otherwise.
func UtilizationText(pct float64, s string) string {
	switch {
	case pct > 100:
		return BoldRed(s)
	case pct >= 85:
		return Yellow(s)
	default:
		return Green(s)
	}
}
