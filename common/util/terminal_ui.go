// Package util holds terminal output helpers shared by the printlookup CLI
package util

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

const bannerWidth = 60

// Console writes status lines and the startup banner. In quiet mode the
// banner is skipped and status lines are written as timestamped log entries.
type Console struct {
	out   io.Writer
	quiet bool
	color bool
}

// NewConsole returns a console writing to out. Colors are enabled when out
// is a terminal and NO_COLOR is unset.
func NewConsole(out io.Writer, quiet bool) *Console {
	return &Console{out: out, quiet: quiet, color: colorSupported(out)}
}

func colorSupported(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColor forces colors on or off
func (c *Console) SetColor(enabled bool) {
	c.color = enabled
}

func (c *Console) paint(color, s string) string {
	if !c.color {
		return s
	}
	return color + s + ColorReset
}

// ShowBanner displays the program name with version and host info
func (c *Console) ShowBanner(name, version, gitCommit, buildDate string) {
	if c.quiet {
		return
	}

	rule := strings.Repeat("─", bannerWidth)
	fmt.Fprintln(c.out, c.paint(ColorCyan, rule))
	c.centerPrint(c.paint(ColorBold, name))
	c.centerPrint(fmt.Sprintf("Version %s | Build %s | %s",
		c.paint(ColorGreen, version),
		c.paint(ColorYellow, gitCommit),
		buildDate))

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	c.centerPrint(c.paint(ColorDim, fmt.Sprintf("%s/%s | Host: %s", runtime.GOOS, runtime.GOARCH, host)))
	fmt.Fprintln(c.out, c.paint(ColorCyan, rule))
	fmt.Fprintln(c.out)
}

// ShowSuccess displays a success message
func (c *Console) ShowSuccess(message string) {
	c.status("✓", ColorGreen, "INFO", ColorBlue, message)
}

// ShowError displays an error message
func (c *Console) ShowError(message string) {
	c.status("✗", ColorRed, "ERROR", ColorRed, message)
}

// ShowInfo displays an info message
func (c *Console) ShowInfo(message string) {
	c.status("•", ColorCyan, "INFO", ColorBlue, message)
}

// ShowWarning displays a warning message
func (c *Console) ShowWarning(message string) {
	c.status("⚠", ColorYellow, "WARN", ColorYellow, message)
}

func (c *Console) status(icon, iconColor, level, levelColor, message string) {
	if c.quiet {
		// In quiet mode, output as a log entry
		timestamp := time.Now().Format(time.RFC3339)
		fmt.Fprintf(c.out, "%s %s %s\n",
			c.paint(ColorDim, timestamp),
			c.paint(levelColor, "["+level+"]"),
			message)
		return
	}
	fmt.Fprintf(c.out, "  %s %s\n", c.paint(iconColor, icon), message)
}

// centerPrint prints text centered within the banner width
func (c *Console) centerPrint(text string) {
	visible := len([]rune(stripAnsi(text)))
	if padding := (bannerWidth - visible) / 2; padding > 0 {
		fmt.Fprint(c.out, strings.Repeat(" ", padding))
	}
	fmt.Fprintln(c.out, text)
}

// stripAnsi removes ANSI escape codes from a string
func stripAnsi(str string) string {
	var b strings.Builder
	inEscape := false
	for i := 0; i < len(str); i++ {
		if str[i] == '\033' && i+1 < len(str) && str[i+1] == '[' {
			inEscape = true
			i++
			continue
		}
		if inEscape {
			if str[i] == 'm' {
				inEscape = false
			}
			continue
		}
		b.WriteByte(str[i])
	}
	return b.String()
}
