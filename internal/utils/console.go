package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// DebugMode controls whether PrintDebug output is visible.
var DebugMode = false

// QuietMode controls whether verbose messages are suppressed (errors/warnings still shown)
var QuietMode = false

// Out receives every console line. Rendered job scripts may go to stdout,
// so status output never does.
var Out io.Writer = os.Stderr

// projectPrefix is the standard tag for all logs.
const projectPrefix = "[JOB]"

// ---------------------------------------------------------
// 1. Private Color Definitions
//    (We hide these so we don't use raw colors in logic)
// ---------------------------------------------------------

var (
	red         = color.New(color.FgRed).SprintFunc()
	green       = color.New(color.FgGreen).SprintFunc()
	yellow      = color.New(color.FgYellow).SprintFunc()
	blueBold    = color.New(color.FgBlue, color.Bold).SprintFunc()
	magenta     = color.New(color.FgMagenta).SprintFunc()
	magentaBold = color.New(color.FgMagenta, color.Bold).SprintFunc()
	cyan        = color.New(color.FgCyan).SprintFunc()
	cyanBold    = color.New(color.FgCyan, color.Bold).SprintFunc()
	gray        = color.New(color.FgWhite).SprintFunc() // FgWhite = Gray in ANSI
	bold        = color.New(color.Bold).SprintFunc()
)

// ---------------------------------------------------------
// 2. Semantic Styles (The "Style..." API)
// ---------------------------------------------------------

// StyleError formats critical failure messages (Red).
func StyleError(msg string) string { return red(msg) }

// StyleSuccess formats success messages (Green).
func StyleSuccess(msg string) string { return green(msg) }

// StyleWarning formats non-critical warnings (Yellow).
func StyleWarning(msg string) string { return yellow(msg) }

// StyleHint formats helpful tips or suggestions (Cyan).
func StyleHint(msg string) string { return cyan(msg) }

// StyleNote formats neutral notes or annotations (Magenta).
func StyleNote(msg string) string { return magenta(msg) }

// StyleInfo formats status labels or properties (Magenta)
func StyleInfo(msg string) string { return magenta(msg) }

// StyleDebug formats low-level technical info (Gray).
func StyleDebug(msg string) string { return gray(msg) }

// StyleCommand formats shell commands or flags (Gray/Faint).
func StyleCommand(cmd string) string { return gray(cmd) }

// StyleTitle
func StyleTitle(title string) string { return bold(cyan(title)) }

// StyleNumber formats counts, sizes, or IDs (Magenta).
func StyleNumber(num interface{}) string {
	return magenta(fmt.Sprintf("%v", num))
}

// StylePath formats file paths with context-aware coloring.
func StylePath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".inp":
		// Input decks -> Bold Cyan
		return cyanBold(path)
	case ".tmpl", ".j2":
		// Job templates -> Bold Magenta
		return magentaBold(path)
	}
	return blueBold(path)
}

// StyleName formats names, identifiers, or keys (Yellow).
func StyleName(name string) string { return yellow(name) }

// StyleHighlight formats search matches or highlighted text (Yellow Bold).
func StyleHighlight(text string) string { return bold(yellow(text)) }

// FormatMiB formats a memory amount given in MiB (e.g., "9.50 GiB").
func FormatMiB(mib int) string {
	const (
		GiB = 1024
		TiB = GiB * 1024
	)

	switch {
	case mib >= TiB:
		return fmt.Sprintf("%.2f TiB", float64(mib)/TiB)
	case mib >= GiB:
		return fmt.Sprintf("%.2f GiB", float64(mib)/GiB)
	default:
		return fmt.Sprintf("%d MiB", mib)
	}
}

// ---------------------------------------------------------
// 3. Log Printers
// ---------------------------------------------------------

// PrintMessage prints a standard info message.
// Output: [JOB] Message...
func PrintMessage(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(Out, "%s %s\n", projectPrefix, msg)
}

// PrintSuccess prints a success message with a Green tag.
// Output: [JOB][PASS] Operation complete.
func PrintSuccess(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	msg := fmt.Sprintf(format, a...)
	tag := StyleSuccess("[PASS]")
	fmt.Fprintf(Out, "%s%s %s\n", projectPrefix, tag, msg)
}

// PrintError prints an error message with a Red tag.
// Output: [JOB][ERR] Something failed.
func PrintError(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	tag := StyleError("[ERR] ")
	fmt.Fprintf(Out, "%s%s %s\n", projectPrefix, tag, msg)
}

// PrintWarning prints a warning with a Yellow tag.
// Output: [JOB][WARN] Included file not found.
func PrintWarning(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	tag := StyleWarning("[WARN]")
	fmt.Fprintf(Out, "%s%s %s\n", projectPrefix, tag, msg)
}

// PrintHint prints a helpful hint with a Cyan tag.
// Output: [JOB][HINT] Try running with --answers.
func PrintHint(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	msg := fmt.Sprintf(format, a...)
	tag := StyleHint("[HINT]")
	fmt.Fprintf(Out, "%s%s %s\n", projectPrefix, tag, msg)
}

// PrintNote prints a note with a Magenta tag.
// Output: [JOB][NOTE] Using packaged template.
func PrintNote(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	msg := fmt.Sprintf(format, a...)
	tag := StyleNote("[NOTE]")
	fmt.Fprintf(Out, "%s%s %s\n", projectPrefix, tag, msg)
}

// PrintDebug prints a debug message with a Gray tag (only if DebugMode is true).
// Output: [JOB][DBG]  Config key slurm.shared_scratch = /scratch
func PrintDebug(format string, a ...interface{}) {
	if DebugMode {
		msg := fmt.Sprintf(format, a...)
		tag := StyleDebug("[DBG] ")
		fmt.Fprintf(Out, "%s%s %s\n", projectPrefix, tag, msg)
	}
}

// ---------------------------------------------------------
// 4. Terminal Detection
// ---------------------------------------------------------

// IsInteractiveInput checks if stdin is connected to a TTY.
// Answers piped in from a file or heredoc return false.
func IsInteractiveInput() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
