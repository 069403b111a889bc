// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/geo-converter/internal/convert"
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AA00"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// printResult writes the success message, skipped files and output path.
func printResult(w io.Writer, res *convert.Result, path string) {
	fmt.Fprintln(w, successStyle.Render(res.Message()))
	for _, o := range res.Failed() {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  skipped %s: %v", o.Name, o.Err)))
	}
	fmt.Fprintln(w, pathStyle.Render("Wrote "+path))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
}

// printTable renders the first rows of a preview for column mapping.
func printTable(w io.Writer, p *convert.Preview, limit int) {
	fmt.Fprintln(w, headerStyle.Render(strings.Join(p.Table.Headers, " | ")))
	for i, r := range p.Table.Rows {
		if i == limit {
			fmt.Fprintln(w, pathStyle.Render(fmt.Sprintf("... %d more rows", len(p.Table.Rows)-limit)))
			break
		}
		cells := make([]string, len(p.Table.Headers))
		for j, h := range p.Table.Headers {
			cells[j] = r.GetString(h)
		}
		fmt.Fprintln(w, strings.Join(cells, " | "))
	}
}
