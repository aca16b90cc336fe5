// Package config loads chyrpal's configuration.
//
// Configuration lives in ~/.config/chyrpal/config.toml:
//
//	api_base = "127.0.0.1:8000/api"
//	page_size = 10
//	refresh_seconds = 60
//
// A missing file is not an error; every field has a default. After the
// file, a .env file in the working directory and the CHYRP_API_BASE /
// CHYRP_PAGE_SIZE environment variables are applied, last writer wins.
// This keeps the common case (point the client at a different backend
// for one run) a one-liner instead of a config edit.
package config
