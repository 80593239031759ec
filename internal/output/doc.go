// Package output provides structured output handling for the ctxsync CLI.
//
// This package handles both human-readable and JSON output formats, so every
// command works equally well for human users and automated agents.
//
// # Printer
//
// The Printer is the primary interface for command output. It switches format
// based on the --json flag and TTY detection:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonFlag, output.IsTTY(cmd.OutOrStdout()))
//
//	printer.Success(map[string]any{"message": "Context synchronized", "status": "success"})
//	printer.Error(err)
//	printer.Println("Some text")
//
// # Exit codes
//
// The package defines the exit codes the synchronizer reports through:
//
//	output.ExitSuccess     // 0: Success or already-installed guard outcome
//	output.ExitUserError   // 1: User error (bad args, unknown policy)
//	output.ExitSystemError // 2: System error (fetch aborted, write failure)
//	output.ExitPartial     // 3: Partial failure (alias creation or validation)
//
// Use the error constructors so errors carry the right code:
//
//	output.NewUserError("unknown policy: keep-both")
//	output.NewSystemError("template fetch failed after 3 attempts")
//	output.NewPartialError("1 of 4 aliases failed")
package output
