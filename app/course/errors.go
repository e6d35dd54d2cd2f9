package course

import (
	"errors"
	"fmt"
)

// MalformedDocumentError reports a parsed document that does not satisfy the
// course schema. Path locates the offending node ("topic[1].lesson[2]"); it
// is empty for problems at the course root.
type MalformedDocumentError struct {
	Path   string
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return e.Path + ": " + e.Reason
}

// IsMalformed reports whether err is, or wraps, a MalformedDocumentError.
func IsMalformed(err error) bool {
	var malformed *MalformedDocumentError
	return errors.As(err, &malformed)
}

func malformed(path, reason string) *MalformedDocumentError {
	return &MalformedDocumentError{Path: path, Reason: reason}
}

func missingField(path, name string) *MalformedDocumentError {
	return malformed(path, "missing required field: "+name)
}

func invalidField(path, name, value string) *MalformedDocumentError {
	return malformed(path, fmt.Sprintf("invalid %s: %q", name, value))
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
