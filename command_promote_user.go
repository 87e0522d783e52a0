package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// PromoteUserMessage asks for a user's role to be overwritten out-of-band.
// The auth flow never changes roles itself; this is the administrative
// path. Sessions issued before the promotion keep their old role until
// the claim set expires.
type PromoteUserMessage struct {
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

func (e PromoteUserMessage) Type() string { return "user.promote" }

type PromoteUserHandler struct {
	Repo RepositoryManager
	Sink ActivitySink
}

func (h *PromoteUserHandler) Execute(ctx context.Context, event PromoteUserMessage) error {
	if event.Email == "" {
		return goerrors.New("email is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	role := event.Role
	if role == "" {
		role = RoleTech
	}

	if _, ok := ParseRole(string(role)); !ok {
		return goerrors.New("unknown role", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"role": role})
	}

	user, err := h.Repo.Users().PromoteRole(ctx, event.Email, role)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryNotFound, "no user with that email").
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to promote user")
	}

	sink := normalizeActivitySink(h.Sink)
	if err := sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventRolePromoted,
		Actor:      ActorRef{Type: "system"},
		UserID:     user.ID.String(),
		Metadata:   map[string]any{"email": user.Email, "role": string(role)},
		OccurredAt: time.Now(),
	}); err != nil {
		// best effort, auditing never fails the promotion
		_ = err
	}

	return nil
}
