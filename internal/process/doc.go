// Package process runs external formatter programs.
//
// A Runner launches one program against a set of arguments, blocks until it
// exits and returns the captured output and exit status:
//
//	res, err := process.NewExec().Run(ctx, process.Command{
//	    Program: "uncrustify",
//	    Args:    []string{"-q", "--no-backup", path},
//	})
//	if errors.Is(err, process.ErrLaunch) {
//	    // the program could not be started
//	}
//	if !res.Success() {
//	    // non-zero exit; res.Stderr has the diagnostics
//	}
//
// The context is consulted before launch only. Once started, a formatter runs
// to completion.
//
// Each run is tracked by a Process carrying a unique ID, its start time and
// exit state. Process is safe for concurrent use.
package process
