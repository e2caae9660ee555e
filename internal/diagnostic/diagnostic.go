package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Kind classifies a diagnostic. The mutability kinds have a fixed shape;
// FieldMutation exists for completeness but is never emitted (field
// mutations on immutable locals auto-upgrade the binding instead).
type Kind int

const (
	Generic Kind = iota
	ParserUnexpected
	MutabilityReassignment
	MutabilityCompoundAssignment
	MutabilityMutatingMethodCall
	MutabilityFieldMutation
	CodegenUnsupported
)

// Diagnostic represents a single compiler error, warning, or info message
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Line     int
	Column   int
	File     string // optional file path
	Hint     string // optional suggestion
}

// Diagnostics manages a collection of diagnostic messages
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{items: make([]Diagnostic, 0)}
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// ErrorWithHint adds an error diagnostic carrying a suggestion
func (d *Diagnostics) ErrorWithHint(kind Kind, line, col int, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Kind:     kind,
		Message:  msg,
		Line:     line,
		Column:   col,
		Hint:     hint,
	})
}

// Add appends a fully constructed diagnostic
func (d *Diagnostics) Add(item Diagnostic) {
	d.items = append(d.items, item)
}

// Merge appends all diagnostics from another collection
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other != nil {
		d.items = append(d.items, other.items...)
	}
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	errors := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == Error {
			errors = append(errors, item)
		}
	}
	return errors
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Error {
			count++
		}
	}
	return count
}

// Format renders every diagnostic in the fixed user-visible shape:
//
//	error: <message>
//	  --> <file>:<line>:<column>
//	   |
//	help: <suggestion>
func (d *Diagnostics) Format(filename string) string {
	if len(d.items) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, item := range d.items {
		fileToUse := filename
		if item.File != "" {
			fileToUse = item.File
		}

		builder.WriteString(fmt.Sprintf("%s: %s\n  --> %s:%d:%d",
			item.Severity.String(),
			item.Message,
			fileToUse,
			item.Line,
			item.Column,
		))

		if item.Hint != "" {
			builder.WriteString(fmt.Sprintf("\n   |\nhelp: %s", item.Hint))
		}

		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// Clear removes all diagnostics from the collection
func (d *Diagnostics) Clear() {
	d.items = make([]Diagnostic, 0)
}
