// Package oauth implements the OAuth 2.1 discovery surface for the MCP
// server, bridging Amazon Cognito to the Claude.ai MCP client.
//
// Cognito publishes OpenID Connect discovery metadata but omits several
// fields the client's DCR-aware OAuth flow requires (PKCE methods, grant
// types, a registration endpoint). This package proxies Cognito's
// discovery document, augments it with those fields, serves RFC 9728
// protected resource metadata at both the MCP-conventional path and the
// root well-known path the client actually requests, and answers dynamic
// client registration (RFC 7591) with pre-provisioned Cognito app client
// credentials instead of minting new ones.
//
// Bearer tokens on MCP requests are verified as Cognito-issued JWTs
// against the user pool's JWKS. Audience is deliberately not enforced:
// Cognito access tokens carry a client_id claim rather than aud, and both
// the public and the confidential app client must be accepted.
package oauth
