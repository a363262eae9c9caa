package pages

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/gobarber/web/pkg/api"
	"github.com/gobarber/web/pkg/auth"
	"github.com/gobarber/web/pkg/session"
	"github.com/gobarber/web/pkg/toast"
	"github.com/gobarber/web/pkg/validation"
)

// ErrNoSession is returned when ctx carries no session.
var ErrNoSession = errors.New("pages: no session in context")

// Backend is the part of the backend API the pages call. *api.Client
// implements it.
type Backend interface {
	SignIn(ctx context.Context, in api.Credentials) (*api.Session, error)
	CreateUser(ctx context.Context, in api.NewUser) (*api.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in api.ResetPassword) error
	UpdateProfile(ctx context.Context, token string, in api.ProfileUpdate) (*api.User, error)
	UpdateAvatar(ctx context.Context, token, filename string, r io.Reader) (*api.User, error)
}

// Result is the outcome of a submitted form.
type Result struct {
	// Redirect is where the browser should go next, if anywhere.
	Redirect string `json:"redirect,omitempty"`

	// FieldErrors holds one message per invalid input.
	FieldErrors validation.FieldErrorMap `json:"errors,omitempty"`
}

// Pages runs the account flows against a backend.
type Pages struct {
	api    Backend
	logger *slog.Logger
}

// New creates the account flows.
func New(backend Backend, logger *slog.Logger) *Pages {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pages{
		api:    backend,
		logger: logger.With("component", "pages"),
	}
}

// SignIn checks the credentials and stores the signed-in user on the session.
func (p *Pages) SignIn(ctx context.Context, form validation.Values) (Result, error) {
	sess, err := sessionFrom(ctx)
	if err != nil {
		return Result{}, err
	}
	if res, done, err := check(signInSchema, form); done {
		return res, err
	}

	resp, err := p.api.SignIn(ctx, api.Credentials{
		Email:    form.String("email"),
		Password: form.String("password"),
	})
	if err != nil {
		p.logger.Info("sign in failed", "error", err)
		return Result{}, toast.Error(ctx, "Authentication Failure",
			"Authentication error, verify your credentials.")
	}

	auth.SetPrincipal(sess, auth.FromUser(resp.User), resp.Token)
	return Result{Redirect: "/dashboard"}, nil
}

// SignUp registers a new account.
func (p *Pages) SignUp(ctx context.Context, form validation.Values) (Result, error) {
	if res, done, err := check(signUpSchema, form); done {
		return res, err
	}

	_, err := p.api.CreateUser(ctx, api.NewUser{
		Name:     form.String("name"),
		Email:    form.String("email"),
		Password: form.String("password"),
	})
	if err != nil {
		p.logger.Info("sign up failed", "error", err)
		return Result{}, toast.Error(ctx, "Signup Failure", "Signup error, please try again.")
	}

	if err := toast.Success(ctx, "Signup Success!", "You may now log in."); err != nil {
		return Result{}, err
	}
	return Result{Redirect: "/"}, nil
}

// ForgotPassword asks the backend to email a recovery link.
func (p *Pages) ForgotPassword(ctx context.Context, form validation.Values) (Result, error) {
	if res, done, err := check(forgotPasswordSchema, form); done {
		return res, err
	}

	if err := p.api.ForgotPassword(ctx, form.String("email")); err != nil {
		p.logger.Info("password recovery failed", "error", err)
		return Result{}, toast.Error(ctx, "Forgot Password",
			"An error has occurred when trying to recover the password.")
	}

	return Result{}, toast.Success(ctx, "Recover password email sent.",
		"An email has been sent to you, please follow the instructions in the email to recover your password.")
}

// ResetPassword sets a new password with the token from the recovery email.
func (p *Pages) ResetPassword(ctx context.Context, token string, form validation.Values) (Result, error) {
	if res, done, err := check(resetPasswordSchema, form); done {
		return res, err
	}

	if token == "" {
		return Result{}, resetFailed(ctx)
	}
	err := p.api.ResetPassword(ctx, api.ResetPassword{
		Token:                token,
		Password:             form.String("password"),
		PasswordConfirmation: form.String("password_confirmation"),
	})
	if err != nil {
		p.logger.Info("password reset failed", "error", err)
		return Result{}, resetFailed(ctx)
	}
	return Result{Redirect: "/"}, nil
}

func resetFailed(ctx context.Context) error {
	return toast.Error(ctx, "Reset Password Failure", "Reset password error, verify your data.")
}

// Profile updates the signed-in user. The password is only changed when
// old_password is filled in.
func (p *Pages) Profile(ctx context.Context, form validation.Values) (Result, error) {
	sess, token, err := signedIn(ctx)
	if err != nil {
		return Result{}, err
	}
	if res, done, err := check(profileSchema, form); done {
		return res, err
	}

	in := api.ProfileUpdate{
		Name:  form.String("name"),
		Email: form.String("email"),
	}
	if old := form.String("old_password"); old != "" {
		in.OldPassword = old
		in.Password = form.String("password")
		in.PasswordConfirmation = form.String("password_confirmation")
	}

	user, err := p.api.UpdateProfile(ctx, token, in)
	if err != nil {
		p.logger.Info("profile update failed", "error", err)
		return Result{}, toast.Error(ctx, "Profile error",
			"An error occurred when saving the profile, please try again.")
	}

	auth.UpdatePrincipal(sess, auth.FromUser(*user))
	if err := toast.Success(ctx, "Profile updated!", "Your profile was successfully updated."); err != nil {
		return Result{}, err
	}
	return Result{Redirect: "/dashboard"}, nil
}

// Avatar replaces the signed-in user's picture.
func (p *Pages) Avatar(ctx context.Context, filename string, r io.Reader) (Result, error) {
	sess, token, err := signedIn(ctx)
	if err != nil {
		return Result{}, err
	}

	user, err := p.api.UpdateAvatar(ctx, token, filename, r)
	if err != nil {
		p.logger.Info("avatar update failed", "error", err)
		return Result{}, toast.Error(ctx, "Picture update failed",
			"An error occurred when saving the picture, please try again.")
	}

	auth.UpdatePrincipal(sess, auth.FromUser(*user))
	return Result{}, toast.Success(ctx, "Picture updated!", "")
}

// SignOut forgets the signed-in user.
func (p *Pages) SignOut(ctx context.Context) (Result, error) {
	sess, err := sessionFrom(ctx)
	if err != nil {
		return Result{}, err
	}
	auth.Clear(sess)
	return Result{Redirect: "/"}, nil
}

// check validates form. done is true when the flow must stop: either the
// form was invalid (res carries the field errors) or validation itself
// failed (err is set).
func check(schema *validation.Schema, form validation.Values) (res Result, done bool, err error) {
	err = schema.Validate(form)
	if err == nil {
		return Result{}, false, nil
	}
	if fields, ok := validation.FieldErrors(err); ok {
		return Result{FieldErrors: fields}, true, nil
	}
	return Result{}, true, err
}

func sessionFrom(ctx context.Context) (auth.Session, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return nil, ErrNoSession
	}
	return sess, nil
}

func signedIn(ctx context.Context) (auth.Session, string, error) {
	sess, err := sessionFrom(ctx)
	if err != nil {
		return nil, "", err
	}
	if !auth.IsAuthenticated(sess) {
		return nil, "", auth.ErrUnauthorized
	}
	return sess, auth.Token(sess), nil
}
