// package auth implements the browser-based Google login flow.
//
// The flow is authorization code with PKCE. The client never holds a
// provider secret: a per-attempt verifier is generated locally, its
// challenge rides along on the authorization URL, and the verifier is
// handed to the Chainy backend which performs the code exchange.
//
// Pending attempts are keyed by an opaque state token and stored until
// the provider redirects back to the loopback server, at which point
// [Resolver] consumes the entry and drives the exchange.
package auth
