package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/abelbrown/newshub/internal/logging"
	"github.com/abelbrown/newshub/internal/otel"
	"github.com/abelbrown/newshub/internal/store"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

type ctxKey int

const userKey ctxKey = iota

type authResponse struct {
	User  store.User `json:"user"`
	Token string     `json:"token,omitempty"`
}

func userFrom(ctx context.Context) store.User {
	u, _ := ctx.Value(userKey).(store.User)
	return u
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// authenticate resolves the bearer token to a user or rejects with 401.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			fail(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}
		u, err := s.repo.SessionUser(r.Context(), token)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logging.Error("session lookup failed", "error", err)
			}
			s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindAuthError, Comp: "server", URL: r.URL.Path})
			fail(w, http.StatusUnauthorized, "Invalid token.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &body); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Email) == "" || body.Password == "" {
		fail(w, http.StatusBadRequest, "Please provide name, email and password")
		return
	}
	if len(body.Password) < MinPasswordLength {
		fail(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Server error during registration")
		return
	}

	u, err := s.repo.CreateUser(r.Context(), body.Name, body.Email, string(hash))
	if errors.Is(err, store.ErrConflict) {
		fail(w, http.StatusConflict, "User already exists with this email")
		return
	}
	if err != nil {
		logging.Error("register failed", "error", err)
		fail(w, http.StatusInternalServerError, "Server error during registration")
		return
	}

	token, err := s.repo.CreateSession(r.Context(), u.ID, s.opts.SessionTTL)
	if err != nil {
		logging.Error("create session failed", "error", err)
		fail(w, http.StatusInternalServerError, "Server error during registration")
		return
	}
	ok(w, http.StatusCreated, "User registered successfully", authResponse{User: u, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &body); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		fail(w, http.StatusBadRequest, "Please provide email and password")
		return
	}

	u, err := s.repo.UserByEmail(r.Context(), body.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logging.Error("login lookup failed", "error", err)
		fail(w, http.StatusInternalServerError, "Server error during login")
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(body.Password)) != nil {
		s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindAuthError, Comp: "server", Msg: "bad credentials"})
		fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.repo.CreateSession(r.Context(), u.ID, s.opts.SessionTTL)
	if err != nil {
		logging.Error("create session failed", "error", err)
		fail(w, http.StatusInternalServerError, "Server error during login")
		return
	}
	ok(w, http.StatusOK, "Login successful", authResponse{User: u, Token: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, "", authResponse{User: userFrom(r.Context())})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteSession(r.Context(), bearerToken(r)); err != nil {
		logging.Error("logout failed", "error", err)
		fail(w, http.StatusInternalServerError, "Server error during logout")
		return
	}
	ok(w, http.StatusOK, "Logout successful", nil)
}
