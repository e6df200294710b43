// Package exitcode defines the process exit codes of validate-assets.
package exitcode

const (
	Success           = 0
	ValidationFailure = 1
	ConfigError       = 2
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case ValidationFailure:
		return "Validation failure"
	case ConfigError:
		return "Configuration or usage error"
	default:
		return "Unknown error"
	}
}

// Error carries an exit code alongside the error that caused it.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return String(e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches code to err. A nil err stays nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}
