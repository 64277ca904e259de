// Package config loads, normalizes, and validates pinpoint configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves credentials from the environment
// (GEMINI_API_KEY, YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET,
// YOUTUBE_REFRESH_TOKEN, PINPOINT_NTFY_TOPIC). Environment values override the
// file so scheduler-injected secrets never need to be written to disk.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
