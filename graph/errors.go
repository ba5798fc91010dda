package graph

import "fmt"

// Error codes carried by EngineError. Compilation reports the first seven;
// Run reports the rest.
const (
	CodeDuplicateNode    = "DUPLICATE_NODE"
	CodeNodeNotFound     = "NODE_NOT_FOUND"
	CodeReservedID       = "RESERVED_ID"
	CodeNoEntryNode      = "NO_ENTRY_NODE"
	CodeMissingReducer   = "MISSING_REDUCER"
	CodeInvalidEdge      = "INVALID_EDGE"
	CodeUnreachableNode  = "UNREACHABLE_NODE"
	CodeDeadEndNode      = "DEAD_END_NODE"
	CodeNoRoute          = "NO_ROUTE"
	CodeMaxStepsExceeded = "MAX_STEPS_EXCEEDED"
)

// EngineError is the error type returned by graph construction,
// compilation and execution. Code is stable and machine readable;
// Message is for humans.
type EngineError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *EngineError) Unwrap() error { return e.Err }

func engineErrf(code, format string, args ...interface{}) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf(format, args...)}
}
