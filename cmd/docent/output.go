package main

import (
	"fmt"
	"os"

	"github.com/kalambet/docent/internal/session"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + ansiReset
}

// Status lines go to stderr so command output stays pipeable.
func emit(color, mark, format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(color, mark+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { emit(ansiGreen, "✓ ", format, args...) }

func printError(format string, args ...any) { emit(ansiRed, "✗ ", format, args...) }

func printWarning(format string, args ...any) { emit(ansiYellow, "⚠ ", format, args...) }

func printStatus(label string, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", colorize(ansiBold, label+":"), fmt.Sprintf(format, args...))
}

// printSessionMessage renders one chat turn on stdout. Menu prompts carry no
// answer content and are skipped; the CLI has no buttons to render them with.
func printSessionMessage(m session.Message) {
	if m.CategoryPrompt || m.QuestionPrompt != "" {
		return
	}
	label := colorize(ansiCyan, "docent")
	if m.Role == session.RoleUser {
		label = colorize(ansiBold, "you")
	}
	fmt.Printf("%s: %s\n", label, m.Text)
}
