package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
)

const fieldLabelWidth = 14

// report accumulates the aligned "Label: value" lines printed for a probed
// file or a preflight run.
type report struct {
	b        strings.Builder
	colorize bool
}

func newReport(colorize bool) *report {
	return &report{colorize: colorize}
}

func (r *report) section(title string) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	r.line(line, ansiBlue)
	r.line(rule, ansiBlue)
}

func (r *report) field(label, value string) {
	r.line(formatField(label, value), "")
}

// outcome writes label with a bracketed tag. Failed outcomes are red and
// passed ones green when colorized.
func (r *report) outcome(label string, passed bool, tag, message string) {
	text := "[" + tag + "]"
	if message != "" {
		text += " " + message
	}
	color := ansiGreen
	if !passed {
		color = ansiRed
	}
	r.line(formatField(label, text), color)
}

func (r *report) line(text, color string) {
	if r.colorize && color != "" {
		text = color + text + ansiReset
	}
	r.b.WriteString(text)
	r.b.WriteByte('\n')
}

func (r *report) String() string {
	return r.b.String()
}

func formatField(label, value string) string {
	return fmt.Sprintf("  %-*s %s", fieldLabelWidth, label+":", value)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
