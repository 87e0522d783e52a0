package social

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"

	auth "github.com/xErr0Ropx876/UniResources"
)

// Linker resolves a provider-asserted profile to a canonical user.
type Linker interface {
	Resolve(ctx context.Context, profile *SocialProfile) (*LinkResult, error)
}

// LinkResult contains the resolved user and metadata.
type LinkResult struct {
	User      *auth.User
	IsNewUser bool
}

// AccountLinker links provider identities to users by email. An existing
// account is reused verbatim: role, provider tag, and profile fields are
// never overwritten by whatever the provider asserted this time around.
// A first-time sign-in creates the account with the student role.
type AccountLinker struct {
	users  auth.Users
	logger auth.Logger
	sink   auth.ActivitySink

	// RequireVerifiedEmail rejects profiles whose email the provider has
	// not verified.
	RequireVerifiedEmail bool

	now func() time.Time
}

// NewAccountLinker creates a linker over the user store.
func NewAccountLinker(users auth.Users) *AccountLinker {
	return &AccountLinker{
		users:  users,
		logger: auth.DefaultLogger(),
		sink:   auth.ActivitySinkFunc(func(context.Context, auth.ActivityEvent) error { return nil }),
		now:    time.Now,
	}
}

// WithLogger sets the logger used by the linker.
func (l *AccountLinker) WithLogger(logger auth.Logger) *AccountLinker {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// WithActivitySink sets the sink receiving user.created events.
func (l *AccountLinker) WithActivitySink(sink auth.ActivitySink) *AccountLinker {
	if sink != nil {
		l.sink = sink
	}
	return l
}

// WithClock overrides the clock used for ban checks.
func (l *AccountLinker) WithClock(now func() time.Time) *AccountLinker {
	if now != nil {
		l.now = now
	}
	return l
}

// Resolve implements Linker. The ban window is checked against the
// resolved account before the sign-in is allowed to continue; a banned
// account denies the whole flow regardless of what the provider said.
func (l *AccountLinker) Resolve(ctx context.Context, profile *SocialProfile) (*LinkResult, error) {
	if profile == nil {
		return nil, ErrUserInfoFailed
	}

	if profile.Email == "" {
		return nil, ErrMissingEmail
	}

	if l.RequireVerifiedEmail && !profile.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	existing, err := l.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		return l.admit(existing, false)
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	// First sign-in for this email. GetOrCreateByEmail absorbs the
	// concurrent-creation race: whoever loses gets the winner's record.
	user, created, err := l.users.GetOrCreateByEmail(ctx, l.userFromProfile(profile))
	if err != nil {
		return nil, err
	}

	if created {
		l.recordCreated(ctx, user, profile)
	}

	return l.admit(user, created)
}

func (l *AccountLinker) admit(user *auth.User, created bool) (*LinkResult, error) {
	if user.IsBanned(l.now()) {
		l.logger.Info("social sign-in denied, account banned", "email", user.Email)
		return nil, auth.NewAccountBannedError(*user.BannedUntil)
	}

	return &LinkResult{User: user, IsNewUser: created}, nil
}

func (l *AccountLinker) userFromProfile(profile *SocialProfile) *auth.User {
	name := profile.Name
	if name == "" {
		name = profile.Username
	}

	return &auth.User{
		Name:     name,
		Email:    auth.NormalizeEmail(profile.Email),
		Role:     auth.RoleStudent,
		Image:    profile.AvatarURL,
		Provider: profile.Provider,
	}
}

func (l *AccountLinker) recordCreated(ctx context.Context, user *auth.User, profile *SocialProfile) {
	err := l.sink.Record(ctx, auth.ActivityEvent{
		EventType:  auth.ActivityEventUserCreated,
		Actor:      auth.ActorRef{Type: "social", ID: profile.Provider},
		UserID:     user.ID.String(),
		OccurredAt: l.now(),
		Metadata: map[string]any{
			"provider": profile.Provider,
			"email":    user.Email,
		},
	})
	if err != nil {
		l.logger.Warn("activity sink record error: %v", err)
	}
}

var _ Linker = (*AccountLinker)(nil)
