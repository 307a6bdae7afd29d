// Package auth implements the token lifecycle and abuse-control subsystem of
// the Linguetta backend: issuance and rotation of paired access/refresh
// credentials, revocation on logout, reconciliation of a Google identity into
// an existing password account within a bounded trust window, and quota and
// rate limiting of the AI-backed endpoints.
//
// The root package holds the [Engine] and the store/capability contracts it
// is built against. Subpackages provide the concrete edges:
//
//   - jwt: signed access tokens
//   - quota: Redis-backed distributed quota counters
//   - ratelimit: in-process fixed-window request throttle
//   - session: Redis-backed browser sessions
//   - googleid: Google ID token verification
//   - middleware: request authentication and abuse-control HTTP middleware
//   - httpapi: the HTTP surface
//   - store/memory, store/postgres: credential store implementations
package auth
