package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RegisterAuthRoutes mounts the login, signup, and logout routes.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.
		Get(controller.Routes.Login,
			controller.LoginShow,
		).
		SetName("sign-in.get")

	app.
		Post(
			controller.Routes.Login,
			controller.LoginPost,
		).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).SetName("sign-out.get")

	app.Get(controller.Routes.Signup, controller.SignupShow).
		SetName("sign-up.get")
	app.Post(controller.Routes.Signup, controller.SignupCreate).
		SetName("sign-up.post")
}

type AuthControllerRoutes struct {
	Login  string
	Logout string
	Signup string
}

type AuthControllerViews struct {
	Login  string
	Logout string
	Signup string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *AuthControllerRoutes
	Views        *AuthControllerViews
	Auther       HTTPAuthenticator
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Login:  "/login",
			Logout: "/logout",
			Signup: "/signup",
		},
		Views: &AuthControllerViews{
			Login:  "login",
			Logout: "logout",
			Signup: "signup",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	return c
}

func (a *AuthController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// GetExtendedSession reports whether the session cookie should outlive
// the default duration
func (r LoginRequest) GetExtendedSession() bool {
	return r.RememberMe
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)
	errs := map[string]string{}

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		a.Logger.Debug("login payload: %s", print.MaybePrettyJSON(payload))
	}

	if err := a.Auther.Login(ctx, payload); err != nil {
		// One message for every failure mode; the mapped error taxonomy
		// stays server-side except for an explicit ban window.
		errs["authentication"] = "Authentication Error"
		if IsAccountBanned(err) {
			errs["authentication"] = err.Error()
		}
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors":  errs,
			"payload": payload,
		})
	}

	redirect := a.Auther.GetRedirect(ctx, "/dashboard")

	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *AuthController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.Redirect("/", router.StatusTemporaryRedirect)
}

func (a *AuthController) SignupShow(ctx router.Context) error {
	return ctx.Render(a.Views.Signup, router.ViewContext{
		"errors": map[string]string{},
		"record": SignupUserMessage{},
	})
}

// SignupCreatePayload is the signup form payload
type SignupCreatePayload struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r SignupCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(6, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) SignupCreate(ctx router.Context) error {
	payload := new(SignupCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		errs := map[string]string{}
		errs["form"] = "Failed to parse form"
		a.Logger.Error("signup parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Signup, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		errs := FormatValidationErrorToMap(err)
		a.Logger.Error("signup validate payload: ", "error", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Signup, router.ViewContext{
			"record":     payload,
			"validation": errs,
		})
	}

	req := SignupUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	}

	signupUser := SignupUserHandler{Repo: a.Repo}
	if err := signupUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("signup execute error: ", "error", err)

		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error creating account",
		}).Render(a.Views.Signup, router.ViewContext{
			"record": payload,
			"errors": []string{err.Error()},
		})
	}

	// Sign the fresh account in right away so the dashboard works on the
	// first redirect.
	if err := a.Auther.Login(ctx, LoginRequest{
		Identifier: payload.Email,
		Password:   payload.Password,
	}); err != nil {
		a.Logger.Error("signup auto login error: ", "error", err)
		return flash.WithSuccess(ctx, router.ViewContext{
			"system_message": "Account created, please sign in",
		}).Redirect("/login", fiber.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Welcome!",
	}).Redirect("/dashboard", fiber.StatusSeeOther)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return fmt.Errorf("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field→message map for templates.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["validation"] = err.Error()
	return out
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
