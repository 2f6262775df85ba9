package capture

// Process exit statuses.
const (
	ExitOK            = 0
	ExitFailure       = 1 // nothing was captured: bad options, device or output
	ExitCaptureFailed = 2 // capture started and ended on an error (strict mode only)
)

// ExitCode maps the outcome of Run to a process exit status. Errors that
// prevented capture from starting always fail. A session that started and
// later stopped on a capture, short-read or write error exits 0 unless
// strict is set.
func ExitCode(result Result, err error, strict bool) int {
	switch {
	case err != nil:
		return ExitFailure
	case strict && result.Err != nil:
		return ExitCaptureFailed
	default:
		return ExitOK
	}
}
