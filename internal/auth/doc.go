// Package auth signs renters in and decides what they may use.
//
// Sign-in sources:
//   - LocalProvider: e-mail and password, hashed with Argon2id, with an
//     optional TOTP second factor and single use recovery codes
//   - OIDCProvider: OpenID Connect (Google), creating the account on first sign-in
//
// A signed-in caller carries either an HS256 bearer token issued by
// TokenIssuer or the id of a server side session in the "session" cookie.
// RequireUser accepts both and puts the loaded user into the fiber locals.
//
// # Entitlements
//
// What a user may do depends on the effective subscription tier:
//   - Limits returns the search profile and monthly letter quotas of a tier,
//     read from the "tier_limits" setting
//   - HasFeature reports premium only features (contract analysis, sms alerts)
//   - RequireTier and RequireFeature guard routes with 403
//
// Example usage:
//
//	svc := auth.NewService(db, &cfg.Auth)
//
//	api.Post("/ai/analyze-contract",
//	    auth.RequireUser(svc),
//	    auth.RequireFeature(auth.FeatureContractAnalysis),
//	    handler,
//	)
package auth
