package scoring

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrComputation is matched by every *ComputationError.
	ErrComputation = errors.New("computation failed")
)

// Issue pinpoints one rejected input. Row and Item are 1-based; zero means
// not applicable.
type Issue struct {
	Domain Domain `json:"domain,omitempty"`
	Row    int    `json:"row,omitempty"`
	Column string `json:"column,omitempty"`
	Item   int    `json:"item,omitempty"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	var parts []string
	if i.Row > 0 {
		parts = append(parts, fmt.Sprintf("row %d", i.Row))
	}
	if i.Column != "" {
		parts = append(parts, fmt.Sprintf("column %q", i.Column))
	} else if i.Domain != "" {
		parts = append(parts, string(i.Domain))
	}
	if i.Item > 0 {
		parts = append(parts, fmt.Sprintf("item %d", i.Item))
	}
	if len(parts) == 0 {
		return i.Reason
	}
	return strings.Join(parts, " ") + ": " + i.Reason
}

// ValidationError reports input that violates a domain rule or a score map
// invariant. It lists every issue found, not only the first.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		msgs[i] = iss.String()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IssuesOf extracts the issues carried by err, or nil if err is not a
// validation error.
func IssuesOf(err error) []Issue {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Issues
	}
	return nil
}

func invalid(issues ...Issue) *ValidationError {
	return &ValidationError{Issues: issues}
}

// ComputationError signals a contract violation that slipped past
// validation. It is fatal to the call that raised it only.
type ComputationError struct {
	Op     string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed in %s: %s", e.Op, e.Reason)
}

func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}
