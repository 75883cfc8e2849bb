package config

import "time"

// MailConfig configures the transactional email provider and the sender
// identity used on clash notifications.
type MailConfig struct {
	APIURL        string
	APIKey        string
	SenderName    string
	SenderEmail   string
	ClashTemplate string
	Timeout       time.Duration
	Queue         string
}

// LoadMailConfig reads MAIL_* variables.
func LoadMailConfig() MailConfig {
	return MailConfig{
		APIURL:        envStr("MAIL_API_URL", ""),
		APIKey:        envStr("MAIL_API_KEY", ""),
		SenderName:    envStr("MAIL_SENDER_NAME", "Theatre Booking Calendar"),
		SenderEmail:   envStr("MAIL_SENDER_EMAIL", "no-reply@localhost"),
		ClashTemplate: envStr("MAIL_CLASH_TEMPLATE", "booking-clash"),
		Timeout:       envDur("MAIL_TIMEOUT", 10*time.Second),
		Queue:         envStr("MAIL_QUEUE", "booking_clash_emails"),
	}
}
