package shared

import "fmt"

// Severity grades a validation message
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// ValidationMessage is one finding of a validation run
type ValidationMessage struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path,omitempty"`
}

// ValidationReport accumulates every finding of a validation run so that the
// caller can render all problems at once. It is returned, never thrown.
type ValidationReport struct {
	Messages []ValidationMessage `json:"messages"`
}

// NewValidationReport creates an empty report
func NewValidationReport() ValidationReport {
	return ValidationReport{Messages: make([]ValidationMessage, 0)}
}

// Add appends a message
func (r *ValidationReport) Add(msg ValidationMessage) {
	r.Messages = append(r.Messages, msg)
}

// AddError appends an ERROR message
func (r *ValidationReport) AddError(code, path, format string, args ...any) {
	r.Add(ValidationMessage{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
		Path:     path,
	})
}

// AddWarning appends a WARNING message
func (r *ValidationReport) AddWarning(code, path, format string, args ...any) {
	r.Add(ValidationMessage{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
		Path:     path,
	})
}

// Merge appends all messages of another report
func (r *ValidationReport) Merge(other ValidationReport) {
	r.Messages = append(r.Messages, other.Messages...)
}

// IsValid returns true if no message has ERROR severity
func (r ValidationReport) IsValid() bool {
	for _, m := range r.Messages {
		if m.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns the ERROR messages
func (r ValidationReport) Errors() []ValidationMessage {
	errs := make([]ValidationMessage, 0)
	for _, m := range r.Messages {
		if m.Severity == SeverityError {
			errs = append(errs, m)
		}
	}
	return errs
}

// HasCode returns true if any message carries the given code
func (r ValidationReport) HasCode(code string) bool {
	for _, m := range r.Messages {
		if m.Code == code {
			return true
		}
	}
	return false
}

// Codes returns the codes of all messages in order
func (r ValidationReport) Codes() []string {
	codes := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		codes = append(codes, m.Code)
	}
	return codes
}
