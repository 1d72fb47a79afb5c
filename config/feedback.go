package config

// FeedbackConfig contains configuration for outbound supplier feedback email.
type FeedbackConfig struct {
	// APIURL is the Resend-compatible email API endpoint.
	APIURL string `env:"API_URL" envDefault:"https://api.resend.com/emails"`
	// APIKey authenticates against the email API. Empty disables sending.
	APIKey string `env:"API_KEY" envDefault:""`
	// FromAddress is the sender shown on feedback emails.
	FromAddress string `env:"FROM_ADDRESS" envDefault:"InsightScore <qualidade@insightscore.example>"`
}

// IsEnabled reports whether feedback email delivery is configured.
func (f FeedbackConfig) IsEnabled() bool { return f.APIKey != "" }
