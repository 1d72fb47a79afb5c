package config

// StorageConfig contains S3-compatible blob storage configuration for
// qualification attachments.
type StorageConfig struct {
	Bucket    string `env:"BUCKET"     envDefault:"insightscore-attachments"`
	Region    string `env:"REGION"     envDefault:"us-east-1"`
	AccessKey string `env:"ACCESS_KEY" envDefault:""`
	SecretKey string `env:"SECRET_KEY" envDefault:""`
	// Endpoint overrides the AWS endpoint (for MinIO and local dev).
	Endpoint string `env:"ENDPOINT" envDefault:""`
	// UsePathStyle is required by MinIO and some S3-compatible stores.
	UsePathStyle bool `env:"USE_PATH_STYLE" envDefault:"false"`
	// PublicBaseURL is prepended to object keys to build public URLs.
	// Empty falls back to the virtual-hosted bucket URL.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:""`
}
