package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	apperrors "github.com/gobarber/web/internal/errors"
	"github.com/gobarber/web/pkg/auth"
	"github.com/gobarber/web/pkg/pages"
	"github.com/gobarber/web/pkg/toast"
	"github.com/gobarber/web/pkg/upload"
	"github.com/gobarber/web/pkg/validation"
)

// maxFormBytes caps JSON and urlencoded form bodies.
const maxFormBytes = 64 << 10

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, s.pages.SignIn)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, s.pages.SignUp)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, s.pages.ForgotPassword)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	form, ok := s.readForm(w, r)
	if !ok {
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		token = form.String("token")
	}
	res, err := s.pages.ResetPassword(r.Context(), token, form)
	s.respond(w, r, res, err)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, s.pages.Profile)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	res, err := s.pages.SignOut(r.Context())
	s.respond(w, r, res, err)
}

func (s *Server) handleShowProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	f, err := upload.Accept(w, r, "avatar", s.config.Upload)
	if err != nil {
		status := upload.StatusCode(err)
		appErr := apperrors.New("G100").WithDetail(err.Error())
		if !errors.Is(err, upload.ErrTooLarge) {
			appErr = apperrors.Newf(apperrors.CategoryUpload, "%s", err.Error())
		}
		writeError(w, status, appErr)
		return
	}
	defer f.Close()

	res, err := s.pages.Avatar(r.Context(), f.Filename, f.Reader)
	s.respond(w, r, res, err)
}

// submit decodes the form and runs flow.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, flow func(context.Context, validation.Values) (pages.Result, error)) {
	form, ok := s.readForm(w, r)
	if !ok {
		return
	}
	res, err := flow(r.Context(), form)
	s.respond(w, r, res, err)
}

// readForm decodes a JSON object of strings or an urlencoded form.
func (s *Server) readForm(w http.ResponseWriter, r *http.Request) (validation.Values, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var form validation.Values
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			writeError(w, http.StatusBadRequest, apperrors.New("G041").Wrap(err))
			return nil, false
		}
		if form == nil {
			form = validation.Values{}
		}
		return form, true
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.New("G041").Wrap(err))
		return nil, false
	}
	form := make(validation.Values, len(r.PostForm))
	for key := range r.PostForm {
		form[key] = r.PostForm.Get(key)
	}
	return form, true
}

// respond writes a page result. Field errors answer 422; a missing
// provider or session is an integration fault and answers 500.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, res pages.Result, err error) {
	switch {
	case err == nil && len(res.FieldErrors) > 0:
		writeJSON(w, http.StatusUnprocessableEntity, res)
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, apperrors.Newf(apperrors.CategorySession, "Authentication required"))
	case toast.IsConfigurationError(err):
		s.logger.Error("notification provider unavailable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, apperrors.New("G040"))
	case errors.Is(err, pages.ErrNoSession):
		s.logger.Error("request without session", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, apperrors.New("G080"))
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, apperrors.Newf(apperrors.CategoryServer, "Internal server error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *apperrors.AppError) {
	writeJSON(w, status, map[string]any{"error": err})
}
