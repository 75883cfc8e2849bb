// Package mail defines the transactional email contract and its transports.
package mail

import "context"

// Recipient is an addressee or sender.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Email is a templated transactional email. Params are passed to the
// provider's template as-is.
type Email struct {
	To           []Recipient    `json:"to"`
	Subject      string         `json:"subject"`
	TemplateName string         `json:"templateName"`
	Sender       Recipient      `json:"sender"`
	Params       map[string]any `json:"params"`
}

// Sender delivers an email. A nil error means the provider accepted it; no
// further failure detail is part of the contract.
type Sender interface {
	SendEmail(ctx context.Context, e Email) error
}
