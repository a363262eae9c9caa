package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gobarber/web/pkg/api"
	"github.com/gobarber/web/pkg/upload"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = 2 * time.Hour

var (
	// ErrEmailTaken is returned when an email address is already registered.
	ErrEmailTaken = errors.New("Email address already used.")

	// ErrInvalidCredentials is returned for a wrong email/password pair.
	ErrInvalidCredentials = errors.New("Incorrect email/password combination.")

	// ErrUserNotFound is returned when no user matches.
	ErrUserNotFound = errors.New("User does not exist.")
)

type user struct {
	api.User
	passwordHash []byte
	avatarID     string
}

type resetToken struct {
	userID    string
	expiresAt time.Time
}

// ResetNotifier receives password reset tokens in place of an email.
type ResetNotifier func(email, token string)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l.With("component", "devapi")
	}
}

// WithPublicURL sets the base URL used in avatar_url values.
// Default: "" (relative /files/{id} links).
func WithPublicURL(base string) Option {
	return func(s *Server) {
		s.publicURL = strings.TrimRight(base, "/")
	}
}

// WithResetNotifier replaces the default notifier, which logs the token.
func WithResetNotifier(fn ResetNotifier) Option {
	return func(s *Server) {
		s.notify = fn
	}
}

// WithBcryptCost sets the password hashing cost.
// Default: bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) {
		s.cost = cost
	}
}

// Server is the in-memory backend.
type Server struct {
	mu      sync.RWMutex
	users   map[string]*user
	byEmail map[string]string
	tokens  map[string]string
	resets  map[string]resetToken

	store     upload.Store
	publicURL string
	cost      int
	notify    ResetNotifier
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Server keeping avatars in store.
func New(store upload.Store, opts ...Option) *Server {
	s := &Server{
		users:   make(map[string]*user),
		byEmail: make(map[string]string),
		tokens:  make(map[string]string),
		resets:  make(map[string]resetToken),
		store:   store,
		cost:    bcrypt.DefaultCost,
		logger:  slog.Default().With("component", "devapi"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notify == nil {
		s.notify = func(email, token string) {
			s.logger.Info("password reset requested", "email", email, "token", token)
		}
	}
	return s
}

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/sessions", s.handleSignIn)
	r.Post("/users", s.handleCreateUser)
	r.Post("/password/forgot", s.handleForgot)
	r.Post("/password/reset", s.handleReset)
	r.Get("/files/{id}", upload.ServeFile(s.store).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/profile", s.handleShowProfile)
		r.Put("/profile", s.handleUpdateProfile)
		r.Patch("/users/avatar", s.handleAvatar)
	})
	return r
}

// CreateUser registers an account directly, for seeding.
func (s *Server) CreateUser(name, email, password string) (api.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return api.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	if _, ok := s.byEmail[key]; ok {
		return api.User{}, ErrEmailTaken
	}
	u := &user{
		User:         api.User{ID: uuid.NewString(), Name: name, Email: email},
		passwordHash: hash,
	}
	s.users[u.ID] = u
	s.byEmail[key] = u.ID
	return u.User, nil
}

// SignIn checks credentials and issues a bearer token.
func (s *Server) SignIn(email, password string) (api.Session, error) {
	s.mu.RLock()
	u := s.users[s.byEmail[normalizeEmail(email)]]
	s.mu.RUnlock()
	if u == nil {
		return api.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return api.Session{}, ErrInvalidCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = u.ID
	view := u.User
	s.mu.Unlock()
	return api.Session{User: view, Token: token}, nil
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in api.Credentials
	if !decode(w, r, &in) {
		return
	}
	sess, err := s.SignIn(in.Email, in.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in api.NewUser
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || len(in.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Validation fails.")
		return
	}
	u, err := s.CreateUser(in.Name, in.Email, in.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleForgot(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	id, ok := s.byEmail[normalizeEmail(in.Email)]
	var token string
	if ok {
		token = uuid.NewString()
		s.resets[token] = resetToken{userID: id, expiresAt: s.now().Add(ResetTokenTTL)}
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusBadRequest, ErrUserNotFound.Error())
		return
	}
	s.notify(in.Email, token)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var in api.ResetPassword
	if !decode(w, r, &in) {
		return
	}
	if in.Password == "" || in.Password != in.PasswordConfirmation {
		writeError(w, http.StatusBadRequest, "Validation fails.")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.resets[in.Token]
	if !ok {
		writeError(w, http.StatusBadRequest, "User token does not exist.")
		return
	}
	delete(s.resets, in.Token)
	if s.now().After(rt.expiresAt) {
		writeError(w, http.StatusBadRequest, "Token expired.")
		return
	}
	u := s.users[rt.userID]
	if u == nil {
		writeError(w, http.StatusBadRequest, ErrUserNotFound.Error())
		return
	}
	u.passwordHash = hash
	w.WriteHeader(http.StatusNoContent)
}

type userKey struct{}

// requireToken resolves the bearer token to a user id.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "JWT token is missing.")
			return
		}
		s.mu.RLock()
		id, ok := s.tokens[token]
		s.mu.RUnlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid JWT token.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, id)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userKey{}).(string)
	return id
}

func (s *Server) handleShowProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	u := s.users[userID(r)]
	var view api.User
	if u != nil {
		view = u.User
	}
	s.mu.RUnlock()

	if u == nil {
		writeError(w, http.StatusNotFound, ErrUserNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in api.ProfileUpdate
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		writeError(w, http.StatusBadRequest, "Validation fails.")
		return
	}

	var newHash []byte
	if in.Password != "" {
		if in.Password != in.PasswordConfirmation {
			writeError(w, http.StatusBadRequest, "Validation fails.")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		newHash = hash
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID(r)]
	if u == nil {
		writeError(w, http.StatusNotFound, ErrUserNotFound.Error())
		return
	}
	key := normalizeEmail(in.Email)
	if owner, ok := s.byEmail[key]; ok && owner != u.ID {
		writeError(w, http.StatusBadRequest, "E-mail already in use.")
		return
	}
	if newHash != nil {
		if in.OldPassword == "" {
			writeError(w, http.StatusBadRequest, "You need to inform the old password to set a new password.")
			return
		}
		if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(in.OldPassword)) != nil {
			writeError(w, http.StatusBadRequest, "Old password does not match.")
			return
		}
		u.passwordHash = newHash
	}

	delete(s.byEmail, normalizeEmail(u.Email))
	s.byEmail[key] = u.ID
	u.Name = in.Name
	u.Email = in.Email
	writeJSON(w, http.StatusOK, u.User)
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	id := userID(r)

	f, err := upload.Receive(w, r, s.store, "avatar", upload.AvatarConfig())
	if err != nil {
		s.logger.Info("avatar rejected", "user_id", id, "error", err)
		writeError(w, upload.StatusCode(err), err.Error())
		return
	}

	s.mu.Lock()
	u := s.users[id]
	if u == nil {
		s.mu.Unlock()
		_ = s.store.Delete(r.Context(), f.ID)
		writeError(w, http.StatusNotFound, ErrUserNotFound.Error())
		return
	}
	old := u.avatarID
	u.avatarID = f.ID
	u.AvatarURL = s.publicURL + "/files/" + f.ID
	view := u.User
	s.mu.Unlock()

	if old != "" {
		if err := s.store.Delete(r.Context(), old); err != nil {
			s.logger.Warn("failed to delete old avatar", "file_id", old, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, view)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body.")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}
