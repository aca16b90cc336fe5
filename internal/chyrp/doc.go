// Package chyrp provides an HTTP client for the Chyrp blogging API.
//
// # Overview
//
// This package defines the API client for communicating with a Chyrp
// backend. It handles HTTP communication, JSON and multipart
// serialization, cookie-based session auth, CSRF token handling, and
// type-safe representation of posts, comments, likes and identities.
//
// # Architecture
//
// The package is split into three files:
//
//   - client.go: HTTP client implementation and request/response handling
//   - types.go: Data structures mirroring the Chyrp API schema
//   - errors.go: Error classification for callers
//
// # Client Usage
//
// Create a client using the API base address from configuration:
//
//	client, err := chyrp.NewClient("127.0.0.1:8000/api")
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	// Probe the current session
//	identity, err := client.CurrentUser(ctx)
//	if chyrp.IsUnauthorized(err) {
//		// render the signed-out UI
//	}
//
//	// Fetch a feed page
//	posts, err := client.ListPosts(ctx, chyrp.SearchQuery{Search: "cats", Page: 1, PageSize: 10})
//
// # Sessions and CSRF
//
// Authentication is cookie-based: Login stores the backend's session
// cookie in the client's jar, and every later request carries it. All
// mutating requests (POST/PATCH/DELETE) attach the anti-forgery token
// in the X-CSRFToken header, sourced from the csrftoken cookie when the
// backend has set one, else from a one-time GET /csrf fetch whose
// result is cached.
//
// # Error Handling
//
// The client distinguishes between several error types:
//
//   - ErrUnauthorized: 401/403 responses, matched with errors.Is; the
//     session layer treats these as "anonymous", not failures
//   - StatusError: other 4xx/5xx responses with the body preserved
//   - Wrapped transport and decode errors for everything else
//
// Local validation (attachment cap, hashtag normalization) happens
// before any bytes go on the wire.
//
// # Testing
//
// The API interface abstracts the client so controllers can run against
// in-memory fakes. Client tests use net/http/httptest servers.
package chyrp
