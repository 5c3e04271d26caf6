package dom

import "fmt"

// DOMError is a structural failure in the tree or a bad selector. Name is
// one of the DOM exception names so scripts see the usual error names.
type DOMError struct {
	Name    string
	Message string
}

func (e *DOMError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is matches any DOMError with the same name, so callers can test against
// the Err* kinds with errors.Is.
func (e *DOMError) Is(target error) bool {
	t, ok := target.(*DOMError)
	return ok && t.Name == e.Name
}

// Kinds for errors.Is.
var (
	HierarchyRequest = &DOMError{Name: "HierarchyRequestError"}
	NotFound         = &DOMError{Name: "NotFoundError"}
	InvalidCharacter = &DOMError{Name: "InvalidCharacterError"}
	Syntax           = &DOMError{Name: "SyntaxError"}
)

func newError(kind *DOMError, message string) *DOMError {
	return &DOMError{Name: kind.Name, Message: message}
}

// ErrHierarchyRequest reports an insertion that would break the tree.
func ErrHierarchyRequest(message string) *DOMError { return newError(HierarchyRequest, message) }

// ErrNotFound reports a reference node that is not where it should be.
func ErrNotFound(message string) *DOMError { return newError(NotFound, message) }

// ErrInvalidCharacter reports an unusable attribute name.
func ErrInvalidCharacter(message string) *DOMError { return newError(InvalidCharacter, message) }

// ErrSyntax reports a malformed selector.
func ErrSyntax(message string) *DOMError { return newError(Syntax, message) }
