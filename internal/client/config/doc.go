// Package config loads runtime configuration for the Taskly terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the Taskly REST API (without /api)
//	-i int      online status check interval (seconds)
//	-d string   path of the local SQLite mirror
//	-t int      request timeout (seconds, 0 disables the timeout)
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Durations are timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "online_check_interval": "3s",
//	  "database_path": "taskly.db",
//	  "request_timeout": "0s",
//	  "log_level": "warn"
//	}
package config
