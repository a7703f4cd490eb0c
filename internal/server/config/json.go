package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskly/internal/flagx"
	"github.com/dmitrijs2005/taskly/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations accept
// either "24h" style strings or integer nanoseconds. Absent fields keep the
// value from earlier sources.
type JsonConfig struct {
	Address        *string         `json:"address"`
	DatabaseDSN    *string         `json:"database_dsn"`
	SecretKey      *string         `json:"secret_key"`
	TokenValidity  *timex.Duration `json:"token_validity"`
	AllowedOrigins []string        `json:"allowed_origins"`
	LogLevel       *string         `json:"log_level"`
	S3AccessKey    *string         `json:"s3_access_key"`
	S3SecretKey    *string         `json:"s3_secret_key"`
	S3Bucket       *string         `json:"s3_bucket"`
	S3Region       *string         `json:"s3_region"`
	S3BaseEndpoint *string         `json:"s3_base_endpoint"`
	S3PublicURL    *string         `json:"s3_public_url"`
}

// parseJson overlays cfg with the file named by -c/-config in args.
// Panics if the file cannot be read or contains invalid JSON.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return
	}

	var c JsonConfig

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, &c); err != nil {
		panic(err)
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}

	set(&cfg.Address, c.Address)
	set(&cfg.DatabaseDSN, c.DatabaseDSN)
	set(&cfg.SecretKey, c.SecretKey)
	set(&cfg.LogLevel, c.LogLevel)
	set(&cfg.S3AccessKey, c.S3AccessKey)
	set(&cfg.S3SecretKey, c.S3SecretKey)
	set(&cfg.S3Bucket, c.S3Bucket)
	set(&cfg.S3Region, c.S3Region)
	set(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&cfg.S3PublicURL, c.S3PublicURL)

	if c.TokenValidity != nil {
		cfg.TokenValidity = c.TokenValidity.Duration
	}
	if c.AllowedOrigins != nil {
		cfg.AllowedOrigins = c.AllowedOrigins
	}
}
