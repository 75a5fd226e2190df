package engine

import "fmt"

// The error taxonomy every exported Session method returns, as typed
// values rather than panics — a caller matches on these with errors.As
// the same way daemon/dispatch.go's fromErr does.

// ErrNotConnected means there is no DP transport for this session.
type ErrNotConnected struct{}

func (ErrNotConnected) Error() string { return "not connected" }

// ErrBadState means a command required a different session state.
type ErrBadState struct {
	Expected string
	Actual   string
}

func (e ErrBadState) Error() string {
	return fmt.Sprintf("expected state %q, got %q", e.Expected, e.Actual)
}

// ErrUnknownRef means a handle was not present in the reference table.
type ErrUnknownRef struct{ Ref string }

func (e ErrUnknownRef) Error() string { return fmt.Sprintf("unknown ref %q", e.Ref) }

// ErrBadRefKind means a handle resolved but to the wrong kind.
type ErrBadRefKind struct {
	Ref          string
	ExpectedKind string
}

func (e ErrBadRefKind) Error() string {
	return fmt.Sprintf("ref %q is not a %v handle", e.Ref, e.ExpectedKind)
}

// ErrScriptNotFound means no loaded script matched the supplied path.
type ErrScriptNotFound struct{ Path string }

func (e ErrScriptNotFound) Error() string { return fmt.Sprintf("no script matches %q", e.Path) }

// ErrEvalFailed wraps a DP exceptionDetails payload from an eval.
type ErrEvalFailed struct{ Text string }

func (e ErrEvalFailed) Error() string { return fmt.Sprintf("evaluation failed: %v", e.Text) }

// ErrMutationFailed wraps a DP exceptionDetails payload from a mutation.
type ErrMutationFailed struct{ Text string }

func (e ErrMutationFailed) Error() string { return fmt.Sprintf("mutation failed: %v", e.Text) }

// ErrRequestTimedOut means a DP request exceeded its budget.
type ErrRequestTimedOut struct {
	Method string
	ID     int
}

func (e ErrRequestTimedOut) Error() string {
	return fmt.Sprintf("request %v (id %v) timed out", e.Method, e.ID)
}

// ErrTransportFailed means the DP transport could not connect, or an
// underlying stream error occurred.
type ErrTransportFailed struct{ Message string }

func (e ErrTransportFailed) Error() string { return fmt.Sprintf("transport failed: %v", e.Message) }

// ErrDisconnected means a pending request was cancelled by transport close.
type ErrDisconnected struct{}

func (ErrDisconnected) Error() string { return "disconnected" }

// ErrInspectorDetectionFailed means the listening-line banner never showed.
type ErrInspectorDetectionFailed struct{}

func (ErrInspectorDetectionFailed) Error() string {
	return "did not detect inspector listening line within timeout"
}

// ErrInvalidArgument means malformed input at the schema boundary.
type ErrInvalidArgument struct {
	Field  string
	Reason string
}

func (e ErrInvalidArgument) Error() string {
	return fmt.Sprintf("invalid argument %v: %v", e.Field, e.Reason)
}
