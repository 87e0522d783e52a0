package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// SignupUserMessage carries the credential signup form.
type SignupUserMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// UseHashid derives the id deterministically from the email instead of
	// minting a random one.
	UseHashid bool
}

func (e SignupUserMessage) Type() string { return "user.signup" }

// SignupUserHandler creates a credential account: password hashed, role
// hard-defaulted to student.
type SignupUserHandler struct {
	Repo RepositoryManager
}

func (h *SignupUserHandler) Execute(ctx context.Context, event SignupUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user signup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupUserHandler) execute(ctx context.Context, event SignupUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.Repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Name = event.Name
		user.Role = RoleStudent
		if event.UseHashid {
			if id, err := hashid.NewUUID(NormalizeEmail(event.Email)); err == nil {
				user.ID = id
			}
		}

		if user, err = h.Repo.Users().CreateTx(ctx, tx, user); err != nil {
			if IsUniqueViolation(err) {
				return goerrors.Wrap(err, goerrors.CategoryConflict, "an account with this email already exists").
					WithCode(goerrors.CodeConflict)
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user signup transaction failed")
	}

	return nil
}
