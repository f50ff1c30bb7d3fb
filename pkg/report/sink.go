// Package report provides the reporting sink used by event verifiers to
// surface diagnostic artifacts, plus an Allure-results file implementation.
package report

// AttachmentType identifies the media type of an attachment.
type AttachmentType string

// Attachment media types.
const (
	TypeJSON AttachmentType = "application/json"
	TypeText AttachmentType = "text/plain"
)

// Sink receives diagnostic artifacts produced during verification.
// Implementations must be safe for concurrent use; background checks attach
// from their own goroutines.
type Sink interface {
	Attach(name string, typ AttachmentType, body []byte)
}

// NopSink discards all artifacts.
type NopSink struct{}

// Attach implements Sink.
func (NopSink) Attach(string, AttachmentType, []byte) {}
