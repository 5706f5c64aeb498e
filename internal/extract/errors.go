package extract

import "fmt"

// UnreadableError indicates the document could not be opened or its page
// count determined. Corruption is not transient, so callers should not retry.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("document unreadable: %v", e.Err)
	}
	return fmt.Sprintf("document unreadable: %s: %v", e.Path, e.Err)
}

func (e *UnreadableError) Unwrap() error {
	return e.Err
}
