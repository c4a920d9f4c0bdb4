package cleaner

import "fmt"

// RemoveOp identifies the removal step that failed.
type RemoveOp string

const (
	OpInspect         RemoveOp = "inspect entry"
	OpRemoveFile      RemoveOp = "remove file"
	OpRemoveDirectory RemoveOp = "remove directory"
	OpReadDirectory   RemoveOp = "read directory files"
)

// RemoveError reports one path that could not be removed. Removal
// errors are per-path and never abort the surrounding run.
type RemoveError struct {
	Op   RemoveOp
	Path string
	Err  error
}

func (e *RemoveError) Error() string {
	return fmt.Sprintf("failed to %s <%s>: %v", e.Op, e.Path, e.Err)
}

func (e *RemoveError) Unwrap() error {
	return e.Err
}
