package core

import (
	"time"
)

// LeadColumns is the column order of every lead export
var LeadColumns = []string{"name", "role", "website_url", "linkedin_url", "location", "specialty", "evidence"}

// Lead represents a sourced executive coach
type Lead struct {
	Name        string
	Role        string
	WebsiteURL  string
	LinkedInURL string
	Location    string
	Specialty   string
	Evidence    string
}

// Row returns the lead's values in LeadColumns order
func (l Lead) Row() []string {
	return []string{l.Name, l.Role, l.WebsiteURL, l.LinkedInURL, l.Location, l.Specialty, l.Evidence}
}

// Candidate is an extracted page that has not been filtered yet
type Candidate struct {
	Lead

	// PageText is the visible text of the page the lead came from
	PageText string
	// Title is the page title and main heading
	Title string
	// Target is the search location that surfaced the page
	Target string
}

// SendLogColumns is the column order of the CSV send log
var SendLogColumns = []string{"timestamp", "subject", "recipient", "template_version", "sender", "message_id"}

// SendRecord represents one logged onboarding send
type SendRecord struct {
	Timestamp       time.Time
	Recipient       string
	Subject         string
	TemplateVersion string
	Sender          string
	MessageID       string
}

// Message represents an outgoing plain-text email
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	Body     string
}

// SendResult represents the provider's answer to a send
type SendResult struct {
	MessageID string
	Provider  string
	SentAt    time.Time
}

// Decision is the duplicate guard's verdict
type Decision int

const (
	// Allow lets the send proceed
	Allow Decision = iota
	// Suppress skips the send because a matching record is inside the window
	Suppress
)

func (d Decision) String() string {
	if d == Suppress {
		return "suppress"
	}
	return "allow"
}

// SendStatus is the outcome of an onboarding run
type SendStatus string

const (
	StatusSent       SendStatus = "sent"
	StatusSuppressed SendStatus = "suppressed"
)

// OnboardingRequest carries the inputs of a single onboarding send
type OnboardingRequest struct {
	To             string
	From           string
	FirstName      string
	SenderName     string
	SchedulingLink string
	Subject        string

	// Body and BodyFile replace the rendered template when set
	Body     string
	BodyFile string
	// Template is the onboarding template text; DefaultTemplate when empty
	Template string

	AllowDuplicate bool
}

// OnboardingOutcome describes what an onboarding run did
type OnboardingOutcome struct {
	Status    SendStatus
	MessageID string
	Record    *SendRecord
	// Prior is the record that caused a suppression
	Prior *SendRecord
}

// SourcingReport summarizes a lead sourcing run
type SourcingReport struct {
	Leads        []Lead
	CSVPath      string
	SheetURL     string
	Queries      int
	PagesFetched int
	Excluded     int
}
