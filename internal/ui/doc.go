// Package ui renders the human-facing parts of a fan-out run.
//
// HeadingFormatter and HeadingPolicy decide what label, if any, precedes each
// repository's command output; HeadingPrinter writes labels and separator rules
// using the colors selected by ColorMode. Command lifecycle events flow through
// ConsoleCommandEventLogger into the diagnostic logger instead of the output stream.
package ui
