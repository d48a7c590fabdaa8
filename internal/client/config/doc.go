// Package config loads runtime configuration for the bloodlink CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c/-config or $BLOODLINK_CONFIG.
//  3. A .env file in the working directory, then the process environment.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   API base URL (default http://localhost:5000/api)
//	-s string   chat server URL (default http://localhost:5000)
//	-d string   local data file holding the session token
//	-v          verbose (debug) logging
//
// # Environment
//
//	BLOODLINK_API_URL, BLOODLINK_CHAT_URL, BLOODLINK_DATA_FILE,
//	BLOODLINK_LOG_LEVEL, BLOODLINK_REQUEST_TIMEOUT
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "2s" or
// integer nanoseconds:
//
//	{
//	  "api_url": "https://api.example.org/api",
//	  "chat_url": "https://api.example.org",
//	  "chat_reconnect_delay": "2s",
//	  "breaker_failures": 5
//	}
package config
