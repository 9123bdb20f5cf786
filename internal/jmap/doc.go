// Package jmap implements a minimal JMAP (RFC 8620/8621) client for
// Fastmail-compatible servers.
//
// The client performs session discovery against the well-known JMAP
// endpoint, caches the API URL and primary mail account for the lifetime
// of the process, and transparently re-discovers the session once when a
// call fails with a session-level error (400/401/403).
//
// Only the subset of JMAP needed by the mail tools is modeled: Mailbox/get,
// Email/query, Email/get and Thread/get, including back-references between
// method calls in a single request.
package jmap
