// Package middleware exposes HTTP middleware for request authentication,
// usage quotas, and abuse throttling.
//
// # Guards
//
//   - [Authenticator] — resolves the caller's identity from a session
//     cookie or a Bearer JWT and injects it into the request context.
//   - [Require] — rejects requests that carry no resolved identity.
//   - [QuotaGuard] — per-user fixed-window usage quota for metered routes.
//   - [Throttle] — per-IP in-process request limiter.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into calls on injected
// collaborators. It does not parse JWTs itself or talk to Redis directly.
package middleware
