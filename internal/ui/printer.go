package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ZoneRow is one discovered or remembered zone
type ZoneRow struct {
	UDN  string
	IP   string
	Name string // User-given name, may be empty
}

// GroupRow is one shade group of a zone
type GroupRow struct {
	Index int
	Name  string
}

// ZoneRows converts a discovery result into rows sorted by IP
func ZoneRows(found map[string]string) []ZoneRow {
	rows := make([]ZoneRow, 0, len(found))
	for udn, ip := range found {
		rows = append(rows, ZoneRow{UDN: udn, IP: ip})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].IP != rows[j].IP {
			return rows[i].IP < rows[j].IP
		}
		return rows[i].UDN < rows[j].UDN
	})
	return rows
}

// Printer writes styled output for CLI commands
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer that writes to w. If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// PrintResult prints a result box followed by a blank line
func (p *Printer) PrintResult(r *Result) {
	r.SetWidth(p.width)
	p.Println(r.Render())
	p.Println("")
}

// PrintZones prints a table of zones, or a warning box when there are none
func (p *Printer) PrintZones(rows []ZoneRow) {
	if len(rows) == 0 {
		p.PrintResult(NewWarningResult("No Leviosa zones found").
			AddDetail("Hint", "zones advertise every few seconds; try a longer --window"))
		return
	}

	table := [][]string{{"#", "IP", "NAME", "DEVICE ID"}}
	for i, r := range rows {
		name := r.Name
		if name == "" {
			name = "-"
		}
		table = append(table, []string{strconv.Itoa(i + 1), r.IP, name, r.UDN})
	}
	p.Println(TitleStyle.Render(fmt.Sprintf("Found %d zone(s)", len(rows))))
	p.Println("")
	p.Println(renderTable(table))
}

// PrintGroups prints the shade groups of a zone
func (p *Printer) PrintGroups(zoneLabel string, rows []GroupRow) {
	table := [][]string{{"INDEX", "GROUP"}}
	for _, r := range rows {
		table = append(table, []string{strconv.Itoa(r.Index), r.Name})
	}
	p.Println(TitleStyle.Render("Groups on " + zoneLabel))
	p.Println("")
	p.Println(renderTable(table))
}

// renderTable lays out rows in left-aligned columns. The first row is the
// heading.
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	var lines []string
	for n, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			padded := cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if n == 0 {
				padded = TableHeaderStyle.Render(padded)
			}
			cells[i] = padded
		}
		lines = append(lines, "  "+strings.Join(cells, "   "))
	}
	return strings.Join(lines, "\n")
}
