// Package errors defines application-level error types.
package errors

// WithHint is an error that carries a hint for resolving it.
type WithHint interface{ Hint() string }

// Runtime is an application runtime error.
type Runtime struct {
	msg   string
	cause error
	hint  string
}

// NewRuntimeError returns a new Runtime error.
func NewRuntimeError(msg string, cause error, hint string) Runtime {
	return Runtime{msg: msg, cause: cause, hint: hint}
}

func (e Runtime) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e Runtime) Unwrap() error {
	return e.cause
}

func (e Runtime) Hint() string {
	return e.hint
}
