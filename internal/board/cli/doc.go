// Package cli provides the interactive board command-line client.
//
// It wires configuration, the document store, object storage, and an
// interactive REPL around the shared post feed. Typical flow: paste an
// access token, browse or watch the live feed, and compose or delete
// posts.
//
// Key features:
//   - Login / Logout with an externally issued access token
//   - Feed listing and live watch
//   - Post composition with an optional cover image upload
//   - Confirmed deletion of own posts
//
// The REPL is started via App.Run(ctx), which blocks until the user
// exits. See App and runREPL for details.
package cli
