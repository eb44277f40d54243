// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with logging and lifecycle notifications, and
// OSCommandRunner launches processes through os/exec with their standard streams
// connected directly to the caller's readers and writers, so output appears live.
// A non-zero exit status is data, reported through ExecutionResult; only a command
// that cannot be launched at all produces an error.
package execshell
