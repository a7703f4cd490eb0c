package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envPrefix is prepended to every variable name the server reads.
const envPrefix = "TASKLY_"

// loadDotEnv reads .env into the process environment. Variables already set
// win, and a missing file is not an error.
func loadDotEnv(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

// parseEnv overlays cfg with TASKLY_* variables:
//
//	TASKLY_ADDRESS, TASKLY_DATABASE_DSN, TASKLY_SECRET_KEY,
//	TASKLY_TOKEN_VALIDITY (Go duration), TASKLY_ALLOWED_ORIGINS (comma separated),
//	TASKLY_LOG_LEVEL, TASKLY_S3_ACCESS_KEY, TASKLY_S3_SECRET_KEY, TASKLY_S3_BUCKET,
//	TASKLY_S3_REGION, TASKLY_S3_ENDPOINT, TASKLY_S3_PUBLIC_URL
//
// A malformed duration panics.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}

	str("ADDRESS", &cfg.Address)
	str("DATABASE_DSN", &cfg.DatabaseDSN)
	str("SECRET_KEY", &cfg.SecretKey)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_ENDPOINT", &cfg.S3BaseEndpoint)
	str("S3_PUBLIC_URL", &cfg.S3PublicURL)

	if v, ok := lookup(envPrefix + "TOKEN_VALIDITY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.TokenValidity = d
	}
	if v, ok := lookup(envPrefix + "ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(v)
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
