package gitref

import (
	"fmt"
	"strings"
)

// SubprocessError reports that a git operation could not be carried out at all
// (as opposed to completing and not finding the ref).
type SubprocessError struct {
	Op      string   // "ls-remote", "clone", "cat-file"
	Command []string // argv, when a process was involved
	Stderr  string
	Wrapped error
}

func (e *SubprocessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "git %s failed", e.Op)
	if len(e.Command) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Command, " "))
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, ": %v", e.Wrapped)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, ": %s", s)
	}
	return b.String()
}

func (e *SubprocessError) Unwrap() error {
	return e.Wrapped
}
