package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeMissingCredentials flags an empty email or password
	TextCodeMissingCredentials = "MISSING_CREDENTIALS"
	// TextCodeUserNotFound flags an email with no matching account
	TextCodeUserNotFound = "USER_NOT_FOUND"
	// TextCodeInvalidPassword flags a failed hash comparison
	TextCodeInvalidPassword = "INVALID_PASSWORD"
	// TextCodeSignInDenied flags the uniform denial used for accounts
	// that cannot sign in with a password
	TextCodeSignInDenied = "SIGN_IN_DENIED"
	// TextCodeAccountBanned flags an account inside its ban window
	TextCodeAccountBanned = "ACCOUNT_BANNED"
)

// ErrMissingCredentials is returned when email or password is empty
var ErrMissingCredentials = errors.New("email and password are required", errors.CategoryValidation).
	WithTextCode(TextCodeMissingCredentials).
	WithCode(errors.CodeBadRequest)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("no user found with this email", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidPassword is returned when the stored hash does not match
var ErrInvalidPassword = errors.New("invalid password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidPassword).
	WithCode(errors.CodeUnauthorized)

// ErrSignInDenied is the silent denial for accounts without a password
// hash (OAuth-only accounts). It carries no detail on purpose: at the
// protocol level it is indistinguishable from a wrong password.
var ErrSignInDenied = errors.New("sign in denied", errors.CategoryAuth).
	WithTextCode(TextCodeSignInDenied).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToFindSession is the error when our request has no cookie
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when the session claim set is past its expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail to parse or verify
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// NewAccountBannedError builds the denial for an account whose ban window
// is still open. The message carries the formatted expiry for display.
func NewAccountBannedError(until time.Time) *errors.Error {
	return errors.New(
		fmt.Sprintf("account banned until %s", until.Format(time.RFC1123)),
		errors.CategoryAuth,
	).
		WithTextCode(TextCodeAccountBanned).
		WithCode(errors.CodeForbidden).
		WithMetadata(map[string]any{
			"banned_until": until,
		})
}

// IsAccountBanned reports whether err is a ban denial
func IsAccountBanned(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeAccountBanned
}

// BannedUntil extracts the ban expiry carried by a ban denial
func BannedUntil(err error) (time.Time, bool) {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return time.Time{}, false
	}
	if richErr.TextCode != TextCodeAccountBanned {
		return time.Time{}, false
	}
	until, ok := richErr.Metadata["banned_until"].(time.Time)
	return until, ok
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUniqueViolation reports whether err is the store's unique-constraint
// rejection. This is how the one genuine race in the system surfaces: two
// concurrent first-time sign-ins creating the same email. Callers recover
// by re-reading the now-existing record instead of failing.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
