package manifest

import (
	"fmt"
)

// UnknownTypeError reports a manifest type outside Types().
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown manifest type: %s", e.Type)
}

// DocumentError reports a manifest file that could not be read or is not
// well-formed XML.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("cannot read manifest %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// ElementError reports a required child element that is missing or empty.
type ElementError struct {
	Parent  string
	Element string
	ID      string // owning asset id, when known
}

func (e *ElementError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("missing <%s> in <%s> %s", e.Element, e.Parent, e.ID)
	}
	return fmt.Sprintf("missing <%s> in <%s>", e.Element, e.Parent)
}

// UnreachableError reports a URL that failed the HTTP existence check.
type UnreachableError struct {
	URL string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("cannot access: %s", e.URL)
}

// RefNotFoundError reports a ref that neither the remote listing nor the bare
// mirror knows about.
type RefNotFoundError struct {
	Ref  string
	Repo string
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("%s reference doesn't exist at %s", e.Ref, e.Repo)
}

// LookupError reports an asset id that has no repository in the asset cache.
type LookupError struct {
	ID   string
	Role string // "depender" or "dependee"
	// Hint tells the user how to make the id known.
	Hint string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("'%s' has not been processed yet; cannot determine its URL!", e.ID)
}

// ProcessError wraps the first failure of a manifest run.
type ProcessError struct {
	Type  Type
	Input string
	Err   error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("failed to process the %s manifest %s: %v", e.Type, e.Input, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }
