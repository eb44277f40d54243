package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

const (
	// DefaultRuleWidth is used when the terminal width cannot be detected.
	DefaultRuleWidth = 80
	// MinimumRuleWidth bounds rules on very narrow terminals.
	MinimumRuleWidth = 20
	// MaximumRuleWidth bounds rules on very wide terminals.
	MaximumRuleWidth = 200
)

// TerminalProbe answers questions about the terminal attached to an output stream.
type TerminalProbe interface {
	IsTerminal() bool
	Width() (int, bool)
}

// FileTerminalProbe inspects the terminal behind an *os.File.
type FileTerminalProbe struct {
	file *os.File
}

// NewFileTerminalProbe constructs a probe for the provided file.
func NewFileTerminalProbe(file *os.File) FileTerminalProbe {
	return FileTerminalProbe{file: file}
}

// IsTerminal reports whether the file is an interactive terminal.
func (probe FileTerminalProbe) IsTerminal() bool {
	if probe.file == nil {
		return false
	}
	descriptor := probe.file.Fd()
	return isatty.IsTerminal(descriptor) || isatty.IsCygwinTerminal(descriptor)
}

// Width reports the terminal column count when it can be determined.
func (probe FileTerminalProbe) Width() (int, bool) {
	if probe.file == nil {
		return 0, false
	}
	columns, _, sizeError := term.GetSize(probe.file.Fd())
	if sizeError != nil || columns <= 0 {
		return 0, false
	}
	return columns, true
}

// RuleWidth converts a probe width into the rule length, clamped to [MinimumRuleWidth, MaximumRuleWidth].
func RuleWidth(probe TerminalProbe) int {
	if probe == nil {
		return DefaultRuleWidth
	}
	columns, detected := probe.Width()
	if !detected {
		return DefaultRuleWidth
	}
	return min(max(columns, MinimumRuleWidth), MaximumRuleWidth)
}
