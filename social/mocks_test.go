package social_test

import (
	"context"
	"fmt"
	"sync"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	auth "github.com/xErr0Ropx876/UniResources"
	"github.com/xErr0Ropx876/UniResources/social"
)

// fakeUsers is an in-memory stand-in for the user store, keyed by
// normalized email. Only the surface the linker touches is implemented.
type fakeUsers struct {
	auth.Users

	mu      sync.Mutex
	records map[string]*auth.User
	creates int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{records: map[string]*auth.User{}}
}

func (f *fakeUsers) add(user *auth.User) *auth.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = auth.NormalizeEmail(user.Email)
	f.records[user.Email] = user
	return user
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.records[auth.NormalizeEmail(email)]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	return user, nil
}

func (f *fakeUsers) GetOrCreateByEmail(ctx context.Context, record *auth.User) (*auth.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	email := auth.NormalizeEmail(record.Email)
	if existing, ok := f.records[email]; ok {
		return existing, false, nil
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Role == "" {
		record.Role = auth.RoleStudent
	}
	record.Email = email
	f.records[email] = record
	f.creates++

	return record, true, nil
}

// fakeProvider is a scripted social provider.
type fakeProvider struct {
	name        string
	token       *social.Token
	profile     *social.SocialProfile
	exchangeErr error
	userInfoErr error

	lastState    string
	lastVerifier string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) AuthCodeURL(state string, opts ...social.AuthCodeOption) string {
	p.lastState = state
	return fmt.Sprintf("https://provider.example.com/authorize?state=%s", state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string, opts ...social.ExchangeOption) (*social.Token, error) {
	cfg := social.ApplyExchangeOptions(opts...)
	p.lastVerifier = cfg.CodeVerifier

	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.token, nil
}

func (p *fakeProvider) UserInfo(ctx context.Context, token *social.Token) (*social.SocialProfile, error) {
	if p.userInfoErr != nil {
		return nil, p.userInfoErr
	}
	return p.profile, nil
}

// stubIssuer returns a canned token and records the email it was asked for.
type stubIssuer struct {
	token string
	err   error

	emails []string
}

func (s *stubIssuer) IssueForEmail(ctx context.Context, email string) (string, error) {
	s.emails = append(s.emails, email)
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

// capturingSink records activity events for assertions.
type capturingSink struct {
	events []auth.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt auth.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}
