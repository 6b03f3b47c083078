package display

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/standardbeagle/crit/internal/report"
	"github.com/standardbeagle/crit/internal/types"
)

// ReportFormatter formats analysis reports for the terminal
type ReportFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls report formatting
type FormatterOptions struct {
	Format            string // "text", "json", "compact"
	ShowClusters      bool
	ShowGraph         bool
	ShowOrphans       bool
	ShowOpportunities bool
	AgentMode         bool // risk markers instead of plain tier names
	MaxRows           int  // cap on list sections; 0 means unlimited
	Indent            string
}

// NewReportFormatter creates a new report formatter
func NewReportFormatter(options FormatterOptions) *ReportFormatter {
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &ReportFormatter{options: options}
}

// Format formats a report for display
func (rf *ReportFormatter) Format(r *report.Report) string {
	if r == nil {
		return "No report available"
	}

	switch rf.options.Format {
	case "json":
		return rf.formatJSON(r)
	case "compact":
		return rf.formatCompact(r)
	default:
		return rf.formatText(r)
	}
}

func (rf *ReportFormatter) formatText(r *report.Report) string {
	var sb strings.Builder
	ind := rf.options.Indent

	fmt.Fprintf(&sb, "Files scanned: %d, skipped: %d, coverage: %.1f%%\n", r.FilesScanned, r.FilesSkipped, r.CoveragePercentage)
	fmt.Fprintf(&sb, "Orphan references: %d\n", r.OrphanReferenceCount)
	fmt.Fprintf(&sb, "Risk tiers: HIGH=%d MEDIUM=%d LOW=%d\n",
		r.TierCounts[types.RiskHigh], r.TierCounts[types.RiskMedium], r.TierCounts[types.RiskLow])
	sb.WriteString("\n")

	sb.WriteString("Critical components\n")
	if len(r.CriticalComponents) == 0 {
		sb.WriteString(ind + "(none)\n")
	}
	width := 0
	for _, i := range rf.limit(len(r.CriticalComponents)) {
		width = max(width, len(r.CriticalComponents[i].FileID))
	}
	for _, i := range rf.limit(len(r.CriticalComponents)) {
		rec := r.CriticalComponents[i]
		fmt.Fprintf(&sb, "%s%-*s  %s  score=%.3f deg=%.3f betw=%.3f complexity=%d\n",
			ind, width, rec.FileID, rf.tier(rec.RiskTier), rec.CompositeScore,
			rec.DegreeCentrality, rec.BetweennessCentrality, rec.Complexity)
	}

	if rf.options.ShowClusters && len(r.Clusters) > 0 {
		fmt.Fprintf(&sb, "\nClusters (k=%d)\n", r.EffectiveK)
		for _, c := range r.Clusters {
			fmt.Fprintf(&sb, "%s#%d %s: %d files, avg complexity %.1f, avg maturity %.1f\n",
				ind, c.ID, c.Label, c.Size, c.AvgComplexity, c.AvgMaturity)
		}
	}

	if rf.options.ShowGraph {
		g := r.Graph
		fmt.Fprintf(&sb, "\nGraph: %d nodes, %d edges, density %.4f\n", g.NodeCount, g.EdgeCount, g.Density)
		for _, cycle := range g.Cycles {
			fmt.Fprintf(&sb, "%scycle: %s\n", ind, strings.Join(cycle, " -> "))
		}
		for _, i := range rf.limit(len(g.MostImported)) {
			fmt.Fprintf(&sb, "%simported by %d: %s\n", ind, g.MostImported[i].InDegree, g.MostImported[i].Path)
		}
	}

	if rf.options.ShowOrphans && len(r.Orphans) > 0 {
		sb.WriteString("\nUnresolved references\n")
		for _, i := range rf.limit(len(r.Orphans)) {
			o := r.Orphans[i]
			fmt.Fprintf(&sb, "%s%s: %s", ind, o.From, o.Specifier)
			if o.Suggestion != "" {
				fmt.Fprintf(&sb, " (did you mean %s?)", o.Suggestion)
			}
			sb.WriteString("\n")
		}
	}

	if rf.options.ShowOpportunities && len(r.Opportunities) > 0 {
		sb.WriteString("\nOpportunities\n")
		for _, i := range rf.limit(len(r.Opportunities)) {
			op := r.Opportunities[i]
			fmt.Fprintf(&sb, "%s[%s] %s %s: %s\n", ind, op.Priority, op.Kind, op.FileID, op.Description)
		}
	}

	for _, d := range r.Diagnostics {
		fmt.Fprintf(&sb, "\nnote (%s): %s", d.Kind, d.Message)
	}
	if len(r.Diagnostics) > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatCompact is a single summary line
func (rf *ReportFormatter) formatCompact(r *report.Report) string {
	top := "-"
	if len(r.CriticalComponents) > 0 {
		top = fmt.Sprintf("%s (%.3f)", r.CriticalComponents[0].FileID, r.CriticalComponents[0].CompositeScore)
	}
	return fmt.Sprintf("scanned=%d skipped=%d orphans=%d high=%d medium=%d low=%d top=%s",
		r.FilesScanned, r.FilesSkipped, r.OrphanReferenceCount,
		r.TierCounts[types.RiskHigh], r.TierCounts[types.RiskMedium], r.TierCounts[types.RiskLow], top)
}

func (rf *ReportFormatter) formatJSON(r *report.Report) string {
	var buf bytes.Buffer
	if err := report.Encode(&buf, r); err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return buf.String()
}

// tier renders a risk tier, with a marker in agent mode
func (rf *ReportFormatter) tier(t types.RiskTier) string {
	if !rf.options.AgentMode {
		return fmt.Sprintf("%-6s", t)
	}
	switch t {
	case types.RiskHigh:
		return "🔴 HIGH  "
	case types.RiskMedium:
		return "🟡 MEDIUM"
	default:
		return "🟢 LOW   "
	}
}

// limit returns the indices to print for a list of length n
func (rf *ReportFormatter) limit(n int) []int {
	if rf.options.MaxRows > 0 && n > rf.options.MaxRows {
		n = rf.options.MaxRows
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
