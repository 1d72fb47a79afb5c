package config

import (
	"strings"
	"time"
)

// SeniorXConfig controls the embedded Senior X SSO handshake.
//
// The retry and timeout values have drifted across platform releases with no
// stated contract; the only guarantee the handshake honors is "bounded,
// eventually terminates". Treat them as tunables.
type SeniorXConfig struct {
	// Embedded selects embedded mode: the handshake runs on startup and the
	// app shell waits for the hosting platform to push credentials. When
	// false the facade resolves through local auth only.
	Embedded bool `env:"EMBEDDED" envDefault:"false"`

	// TrustedRootDomain accepts any origin whose hostname equals this domain
	// or is a subdomain of it.
	TrustedRootDomain string `env:"TRUSTED_ROOT_DOMAIN" envDefault:"senior.com.br"`

	// LegacyOrigins is an explicit allowlist of full origins that predate the
	// current domain scheme.
	LegacyOrigins []string `env:"LEGACY_ORIGINS" envSeparator:";" envDefault:"https://platform.senior.com.br"`

	// RequestMarker is the literal message sent to the hosting platform to
	// ask it to push credentials.
	RequestMarker string `env:"REQUEST_MARKER" envDefault:"requestInitialData"`

	// RetryInterval is the pause between credential requests to the host.
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"1s"`

	// HandshakeTimeout bounds the whole handshake; after it elapses the
	// loading state resolves regardless of outcome.
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT" envDefault:"5s"`

	// APIBaseURL is the Senior X platform API used to validate pushed access
	// tokens on the token-exchange path.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"https://cloud-leaf.senior.com.br"`

	// SnapshotPath is where the file-backed snapshot store persists the
	// external identity between runs. Empty disables file persistence.
	SnapshotPath string `env:"SNAPSHOT_PATH" envDefault:""`
}

// Sanitize applies guardrails to Senior X configuration values.
func (s *SeniorXConfig) Sanitize() {
	s.TrustedRootDomain = strings.TrimSpace(strings.ToLower(s.TrustedRootDomain))
	if s.RetryInterval <= 0 {
		s.RetryInterval = time.Second
	}
	if s.HandshakeTimeout <= 0 {
		s.HandshakeTimeout = 5 * time.Second
	}
	// A timeout shorter than one retry interval would terminate before the
	// first retry fires.
	if s.HandshakeTimeout < s.RetryInterval {
		s.HandshakeTimeout = s.RetryInterval
	}
	if s.RequestMarker == "" {
		s.RequestMarker = "requestInitialData"
	}
}
