// Package cli provides the command-line interface for the trade journal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"tradejournal/internal/analytics"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// tierAttributes maps win-rate tiers to their matrix colors.
var tierAttributes = map[analytics.Tier][]color.Attribute{
	analytics.TierHigh:   {color.FgGreen, color.Bold},
	analytics.TierMid:    {color.FgYellow},
	analytics.TierLow:    {color.FgRed},
	analytics.TierNoData: {color.Faint},
}

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	return &Output{
		writer:       cmd.OutOrStdout(),
		jsonMode:     jsonMode,
		colorEnabled: !jsonMode && !noColor && isTerminal(),
	}
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Writer returns the underlying writer.
func (o *Output) Writer() io.Writer {
	return o.writer
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Success prints a success message in green.
func (o *Output) Success(format string, args ...interface{}) {
	o.colored(ColorGreen, format, args...)
}

// Error prints an error message in red.
func (o *Output) Error(format string, args ...interface{}) {
	o.colored(ColorRed, format, args...)
}

// Warning prints a warning message in yellow.
func (o *Output) Warning(format string, args ...interface{}) {
	o.colored(ColorYellow, format, args...)
}

// Info prints an info message in cyan.
func (o *Output) Info(format string, args ...interface{}) {
	o.colored(ColorCyan, format, args...)
}

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) {
	o.colored(ColorBold, format, args...)
}

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) {
	o.colored(ColorDim, format, args...)
}

func (o *Output) colored(color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if o.colorEnabled {
		fmt.Fprintf(o.writer, "%s%s%s\n", color, msg, ColorReset)
	} else {
		fmt.Fprintln(o.writer, msg)
	}
}

// ColoredString returns a colored string without newline.
func (o *Output) ColoredString(color, text string) string {
	if o.colorEnabled {
		return color + text + ColorReset
	}
	return text
}

// Green returns green colored text.
func (o *Output) Green(text string) string {
	return o.ColoredString(ColorGreen, text)
}

// Red returns red colored text.
func (o *Output) Red(text string) string {
	return o.ColoredString(ColorRed, text)
}

// Yellow returns yellow colored text.
func (o *Output) Yellow(text string) string {
	return o.ColoredString(ColorYellow, text)
}

// Cyan returns cyan colored text.
func (o *Output) Cyan(text string) string {
	return o.ColoredString(ColorCyan, text)
}

// BoldText returns bold text.
func (o *Output) BoldText(text string) string {
	return o.ColoredString(ColorBold, text)
}

// DimText returns dimmed text.
func (o *Output) DimText(text string) string {
	return o.ColoredString(ColorDim, text)
}

// TierText colors text by win-rate tier.
func (o *Output) TierText(tier analytics.Tier, text string) string {
	attrs, ok := tierAttributes[tier]
	if !ok || !o.colorEnabled {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

// PnLColor returns the appropriate color for P&L.
func (o *Output) PnLColor(pnl float64) string {
	if pnl > 0 {
		return ColorGreen
	} else if pnl < 0 {
		return ColorRed
	}
	return ColorWhite
}

// FormatPnL formats P&L with color.
func (o *Output) FormatPnL(pnl float64) string {
	return o.ColoredString(o.PnLColor(pnl), FormatPnL(pnl))
}

// FormatR formats an R multiple with color.
func (o *Output) FormatR(r float64) string {
	return o.ColoredString(o.PnLColor(r), FormatR(r))
}

// FormatPnLColumn formats amounts as P&L right-aligned to a shared width,
// colored by sign.
func (o *Output) FormatPnLColumn(values []float64) []string {
	plain := make([]string, len(values))
	width := 0
	for i, v := range values {
		plain[i] = FormatPnL(v)
		width = max(width, runewidth.StringWidth(plain[i]))
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = o.ColoredString(o.PnLColor(v), PadLeft(plain[i], width))
	}
	return out
}

// Table represents a simple table for output.
type Table struct {
	headers []string
	rows    [][]string
	output  *Output
}

// NewTable creates a new table.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		output:  output,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(stripANSI(h))
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				if w := runewidth.StringWidth(stripANSI(cell)); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	t.printRow(t.headers, widths, true)
	t.printSeparator(widths)
	for _, row := range t.rows {
		t.printRow(row, widths, false)
	}
}

func (t *Table) printRow(cells []string, widths []int, isHeader bool) {
	var parts []string
	for i, cell := range cells {
		if i < len(widths) {
			padding := widths[i] - runewidth.StringWidth(stripANSI(cell))
			if padding < 0 {
				padding = 0
			}
			padded := cell + strings.Repeat(" ", padding)
			if isHeader && t.output.colorEnabled {
				padded = ColorBold + padded + ColorReset
			}
			parts = append(parts, padded)
		}
	}
	t.output.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
}

func (t *Table) printSeparator(widths []int) {
	var parts []string
	for _, w := range widths {
		parts = append(parts, strings.Repeat("─", w))
	}
	sep := strings.Join(parts, "──")
	if t.output.colorEnabled {
		sep = ColorDim + sep + ColorReset
	}
	t.output.Println(sep)
}

// stripANSI removes ANSI escape codes from a string.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// Box draws a box around content.
func (o *Output) Box(title string, content []string) {
	maxLen := runewidth.StringWidth(title)
	for _, line := range content {
		if w := runewidth.StringWidth(stripANSI(line)); w > maxLen {
			maxLen = w
		}
	}

	width := maxLen + 4
	border := strings.Repeat("─", width-2)
	heading := Center(title, width-4)

	if o.colorEnabled {
		o.Printf("%s┌%s┐%s\n", ColorDim, border, ColorReset)
		o.Printf("%s│%s %s%s%s │%s\n", ColorDim, ColorReset, ColorBold, heading, ColorDim, ColorReset)
		o.Printf("%s├%s┤%s\n", ColorDim, border, ColorReset)
		for _, line := range content {
			padding := width - 4 - runewidth.StringWidth(stripANSI(line))
			o.Printf("%s│%s %s%s %s│%s\n", ColorDim, ColorReset, line, strings.Repeat(" ", padding), ColorDim, ColorReset)
		}
		o.Printf("%s└%s┘%s\n", ColorDim, border, ColorReset)
	} else {
		o.Printf("+%s+\n", border)
		o.Printf("| %s |\n", heading)
		o.Printf("+%s+\n", border)
		for _, line := range content {
			padding := width - 4 - runewidth.StringWidth(stripANSI(line))
			o.Printf("| %s%s |\n", line, strings.Repeat(" ", padding))
		}
		o.Printf("+%s+\n", border)
	}
}
