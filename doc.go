// Package auth implements the authentication, identity-linking, and
// route-authorization core of UniResources.
//
// Sign-in paths:
//   - Credential sign-in verifies an email/password pair against the stored
//     record (UserProvider). Accounts created through an OAuth provider carry
//     no password hash; for those the credential path resolves to a uniform
//     denial instead of a password error.
//   - OAuth sign-in (social package) reconciles a provider-asserted email into
//     the canonical local user record, creating it with the student role on
//     first contact.
//
// Both paths enforce the ban window (User.BannedUntil) against the current
// time at the moment of the sign-in decision. On success the Auther mints a
// signed JWT claim set carrying {id, role, email, name, image}; subsequent
// requests trust that claim set until expiry and never re-read the store.
//
// Route authorization is handled by middleware/routegate: an ordered,
// first-match-wins policy table evaluated before every handler, deciding
// allow or redirect purely from the request path and the claim set.
package auth
