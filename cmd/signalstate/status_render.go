package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// statusKind classifies a status line for labeling and color.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

var statusKindMeta = [...]struct {
	label string
	color string
}{
	statusInfo:  {label: "INFO", color: "\x1b[34m"},
	statusOK:    {label: "OK", color: "\x1b[32m"},
	statusWarn:  {label: "WARN", color: "\x1b[33m"},
	statusError: {label: "ERROR", color: "\x1b[31m"},
}

// detectorStatusKind maps a pipeline status string onto a line kind.
func detectorStatusKind(status string) statusKind {
	switch status {
	case "healthy":
		return statusOK
	case "degraded":
		return statusWarn
	case "offline":
		return statusError
	default:
		return statusInfo
	}
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	meta := statusKindMeta[kind]
	var b strings.Builder
	fmt.Fprintf(&b, "  %-14s [%s]", label+":", meta.label)
	if message != "" {
		b.WriteByte(' ')
		b.WriteString(message)
	}
	if colorize {
		return meta.color + b.String() + ansiReset
	}
	return b.String()
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		blue := statusKindMeta[statusInfo].color
		line = blue + line + ansiReset
		rule = blue + rule + ansiReset
	}
	return []string{line, rule}
}

// sessionDetail summarizes a session for one status line: the short id plus
// the local start time.
func sessionDetail(id string, start time.Time) string {
	if id == "" {
		return "no session yet"
	}
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	if start.IsZero() {
		return short
	}
	return fmt.Sprintf("%s (started %s)", short, start.Local().Format("15:04:05"))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
