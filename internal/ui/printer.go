package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/gits/internal/utils"
)

const (
	ruleCharacterConstant = "-"
	lineTemplateConstant  = "%s\n"
	writeFailureTemplate  = "unable to write heading: %w"
)

// HeadingPrinterConfiguration describes how headings are rendered.
type HeadingPrinterConfiguration struct {
	Style        HeadingStyle
	ColorEnabled bool
	RuleWidth    int
}

// HeadingPrinter writes target labels and separator rules to an output stream.
type HeadingPrinter struct {
	writer        io.Writer
	style         lipgloss.Style
	configuration HeadingPrinterConfiguration
}

// NewHeadingPrinter constructs a HeadingPrinter writing to the provided writer.
func NewHeadingPrinter(writer io.Writer, configuration HeadingPrinterConfiguration) *HeadingPrinter {
	if writer == nil {
		writer = io.Discard
	}
	if configuration.RuleWidth <= 0 {
		configuration.RuleWidth = DefaultRuleWidth
	}
	if len(configuration.Style) == 0 {
		configuration.Style = HeadingStyleRule
	}
	return &HeadingPrinter{
		writer:        utils.NewFlushingWriter(writer),
		style:         NewHeadingColorStyle(writer, configuration.ColorEnabled),
		configuration: configuration,
	}
}

// PrintLabel writes a single heading line.
func (printer *HeadingPrinter) PrintLabel(label string) error {
	return printer.writeLine(printer.style.Render(label))
}

// PrintRule writes a horizontal rule when the rule style is active.
func (printer *HeadingPrinter) PrintRule() error {
	if printer.configuration.Style != HeadingStyleRule {
		return nil
	}
	rule := strings.Repeat(ruleCharacterConstant, printer.configuration.RuleWidth)
	return printer.writeLine(printer.style.Render(rule))
}

func (printer *HeadingPrinter) writeLine(line string) error {
	if _, writeError := fmt.Fprintf(printer.writer, lineTemplateConstant, line); writeError != nil {
		return fmt.Errorf(writeFailureTemplate, writeError)
	}
	return nil
}
