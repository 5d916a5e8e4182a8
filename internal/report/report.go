// Package report prints compiler diagnostics to the console.
package report

import (
	"fmt"
	"sync"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a standard Go error to the console
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintWarningMessage prints a warning message to the console
func PrintWarningMessage(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// Console prints compiler warnings under a fixed tag and counts them.
// It satisfies spirv.Logger.
type Console struct {
	// Tag labels every warning banner.
	Tag string

	// Quiet counts warnings without printing them.
	Quiet bool

	m        sync.Mutex
	warnings int
}

// NewConsole creates a console reporter with the given tag.
func NewConsole(tag string) *Console {
	return &Console{Tag: tag}
}

// Warnf reports a non-fatal diagnostic.
func (c *Console) Warnf(format string, args ...any) {
	c.m.Lock()
	defer c.m.Unlock()

	c.warnings++
	if !c.Quiet {
		PrintWarningMessage(c.Tag+" Warning", fmt.Sprintf(format, args...))
	}
}

// Warnings returns the number of warnings reported so far.
func (c *Console) Warnings() int {
	c.m.Lock()
	defer c.m.Unlock()
	return c.warnings
}
