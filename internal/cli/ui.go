package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/skillcat/pkg/catalog"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// tierStyles colour tiers from best (green) to worst (dim).
var tierStyles = map[catalog.Tier]lipgloss.Style{
	1: lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	2: lipgloss.NewStyle().Foreground(colorGreen),
	3: lipgloss.NewStyle().Foreground(colorCyan),
	4: lipgloss.NewStyle().Foreground(colorGray),
	5: lipgloss.NewStyle().Foreground(colorDim),
}

func renderTier(t catalog.Tier) string {
	s, ok := tierStyles[t]
	if !ok {
		return fmt.Sprintf("T%d", t)
	}
	return s.Render(fmt.Sprintf("T%d", t))
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Run Report
// =============================================================================

// printReport prints the summary of a pipeline run.
func printReport(r *catalog.RunReport) {
	fmt.Println(StyleTitle.Render("Run " + shortID(r.RunID)))
	for _, c := range r.Collectors {
		line := fmt.Sprintf("%-32s %s candidates", c.Name, StyleNumber.Render(fmt.Sprint(c.Succeeded)))
		if c.Skipped > 0 || c.Failed > 0 {
			line += StyleDim.Render(fmt.Sprintf(" · %d skipped · %d failed", c.Skipped, c.Failed))
		}
		if c.Aborted() {
			fmt.Println(styleIconWarning.Render(iconWarning) + " " + line + " " + StyleWarning.Render(c.Err))
			continue
		}
		fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + line)
	}

	printKeyValue("Candidates", fmt.Sprint(r.Candidates))
	printKeyValue("Entries", fmt.Sprint(r.Entries))
	printKeyValue("Details", fmt.Sprintf("%d/%d written, %d pruned", r.DetailsWritten, r.DetailsAttempted, r.DetailsPruned))
	for _, p := range r.Published {
		if p.Err != "" {
			printWarning("%s: %s", p.Target, p.Err)
			continue
		}
		printSuccess("Published to %s", p.Target)
	}
	printKeyValue("Duration", r.Duration.Round(time.Millisecond).String())
	if r.Partial() {
		printWarning("Run was partial; see the log for details")
	}
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
