// Package oidc provides the handlers of the OpenID Connect sign-in flow.
//
// The flow includes:
//   - Login initiation with CSRF protection via state tokens
//   - Authorization callback handling with ID token verification
//   - Automatic profile creation from the identity claims
//   - Session creation and cookie management
//
// Routes, below /api:
//
//	// GET /auth/oidc/login - redirect to the identity provider
//	// GET /auth/callback   - handle the provider callback
package oidc
