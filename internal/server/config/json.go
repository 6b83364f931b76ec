package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/cmskeeper/internal/flagx"
	"github.com/dmitrijs2005/cmskeeper/internal/timex"
)

// JsonConfig mirrors Config for unmarshalling. Every field is a pointer so
// that keys missing from the file leave the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP *string `json:"endpoint_addr_http"`
	EndpointAddrGRPC *string `json:"endpoint_addr_grpc"`
	DatabaseDSN      *string `json:"database_dsn"`

	JWTSecret        *string `json:"jwt_secret"`
	JWTRefreshSecret *string `json:"jwt_refresh_secret"`
	JWTExpiresIn     *int    `json:"jwt_expires_in"`
	JWTExpiresInUnit *string `json:"jwt_expires_in_unit"`

	CryptSecret             *string         `json:"crypt_secret"`
	MaxSlugGenerateAttempts *int            `json:"max_slug_generate_attempts"`
	FrontURLResetPassword   *string         `json:"front_url_reset_password"`
	ResetTokenMaxAge        *timex.Duration `json:"reset_token_max_age"`
	MaxUploadSize           *int64          `json:"max_upload_size"`

	S3RootUser     *string `json:"s3_root_user"`
	S3RootPassword *string `json:"s3_root_password"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`

	SMTPHost     *string `json:"smtp_host"`
	SMTPPort     *int    `json:"smtp_port"`
	SMTPUser     *string `json:"smtp_user"`
	SMTPPassword *string `json:"smtp_password"`
	EmailFrom    *string `json:"email_from"`

	LogLevel          *string `json:"log_level"`
	SettingsCacheSize *int    `json:"settings_cache_size"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseJson overlays config with the JSON file named by -c/-config, if
// any. An unreadable or invalid file panics.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	set(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.DatabaseDSN, c.DatabaseDSN)

	set(&config.JWTSecret, c.JWTSecret)
	set(&config.JWTRefreshSecret, c.JWTRefreshSecret)
	set(&config.JWTExpiresIn, c.JWTExpiresIn)
	set(&config.JWTExpiresInUnit, c.JWTExpiresInUnit)

	set(&config.CryptSecret, c.CryptSecret)
	set(&config.MaxSlugGenerateAttempts, c.MaxSlugGenerateAttempts)
	set(&config.FrontURLResetPassword, c.FrontURLResetPassword)
	if c.ResetTokenMaxAge != nil {
		config.ResetTokenMaxAge = c.ResetTokenMaxAge.Duration
	}
	set(&config.MaxUploadSize, c.MaxUploadSize)

	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	set(&config.SMTPHost, c.SMTPHost)
	set(&config.SMTPPort, c.SMTPPort)
	set(&config.SMTPUser, c.SMTPUser)
	set(&config.SMTPPassword, c.SMTPPassword)
	set(&config.EmailFrom, c.EmailFrom)

	set(&config.LogLevel, c.LogLevel)
	set(&config.SettingsCacheSize, c.SettingsCacheSize)
}
