// Package fanout runs one external command in every resolved repository.
//
// Orchestrator walks a TargetSet in order, printing headings when the heading
// policy asks for them and streaming each command's input and output straight
// through. The exit code of the last command becomes the run's outcome.
package fanout
