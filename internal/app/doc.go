// Package app provides the orchestration layer for the chyrpal
// application.
//
// # Overview
//
// This package wires together configuration, the Chyrp API client, the
// session store, and the feed and interaction controllers to create the
// complete chyrpal TUI experience. It serves as the composition root
// where all dependencies are initialized and connected.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Load chyrpal configuration from ~/.config/chyrpal/config.toml,
//     applying .env and CHYRP_* environment overrides
//  2. Load user preferences (theme) from ~/.config/chyrpal/prefs.toml
//  3. Initialize the HTTP client with its cookie jar for session auth
//  4. Probe the session once so the first rendered frame already knows
//     whether the user is signed in
//  5. Start the TUI and block until the user exits or the context
//     cancels
//
// Ongoing session refresh runs inside the UI event loop as a Bubble Tea
// tick rather than a separate goroutine; the UI owns its own cadence.
//
// # Error Handling
//
// Errors during startup (unreadable config, bad API base URL) are fatal
// and returned from Run. A failed initial session probe is not: the
// probe resolves the session to anonymous and the UI starts normally,
// since a reachable-but-unauthenticated backend is an ordinary state
// for a public feed.
//
// # Configuration
//
// The Options struct allows callers to customize:
//
//   - ConfigPath: path to config.toml (default: ~/.config/chyrpal/config.toml)
//   - PrefsPath: path to prefs.toml (default: ~/.config/chyrpal/prefs.toml)
//   - Server: API base override, e.g. "https://blog.example.com/api"
//   - RefreshEvery: session refresh interval in seconds
package app
