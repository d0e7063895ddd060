package server

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/abelbrown/newshub/internal/logging"
	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/store"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, "", authResponse{User: userFrom(r.Context())})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decode(w, r, &body); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Name) != "" {
		u.Name = strings.TrimSpace(body.Name)
	}
	if strings.TrimSpace(body.Email) != "" {
		u.Email = strings.ToLower(strings.TrimSpace(body.Email))
	}

	err := s.repo.UpdateProfile(r.Context(), u.ID, u.Name, u.Email)
	if errors.Is(err, store.ErrConflict) {
		fail(w, http.StatusConflict, "Email already in use")
		return
	}
	if err != nil {
		logging.Error("update profile failed", "error", err)
		fail(w, http.StatusInternalServerError, "Server error updating profile")
		return
	}
	ok(w, http.StatusOK, "Profile updated successfully", authResponse{User: u})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decode(w, r, &body); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if body.CurrentPassword == "" || body.NewPassword == "" {
		fail(w, http.StatusBadRequest, "Please provide current and new password")
		return
	}
	if len(body.NewPassword) < MinPasswordLength {
		fail(w, http.StatusBadRequest, "New password must be at least 6 characters")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(body.CurrentPassword)) != nil {
		fail(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err == nil {
		err = s.repo.UpdatePassword(r.Context(), u.ID, string(hash))
	}
	if err != nil {
		logging.Error("change password failed", "error", err)
		fail(w, http.StatusInternalServerError, "Server error changing password")
		return
	}
	ok(w, http.StatusOK, "Password changed successfully", nil)
}

type prefsResponse struct {
	Preferences model.Preferences `json:"preferences"`
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	p, err := s.repo.LoadPreferences(r.Context(), u.ID)
	if errors.Is(err, store.ErrNotFound) {
		p = model.DefaultPreferences()
	} else if err != nil {
		logging.Error("load preferences failed", "error", err)
		fail(w, http.StatusInternalServerError, "Server error loading preferences")
		return
	}
	ok(w, http.StatusOK, "", prefsResponse{Preferences: p})
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	var body struct {
		DarkMode      bool             `json:"darkMode"`
		Country       string           `json:"country"`
		Categories    []string         `json:"categories"`
		Bookmarks     []model.Bookmark `json:"bookmarks"`
		Notifications *bool            `json:"notifications"`
		Language      string           `json:"language"`
	}
	if err := decode(w, r, &body); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	p := model.DefaultPreferences()
	p.DarkMode = body.DarkMode
	if body.Country != "" {
		p.Country = body.Country
	}
	if len(body.Categories) > 0 {
		p.Categories = body.Categories
	}
	if body.Notifications != nil {
		p.Notifications = *body.Notifications
	}
	if body.Language != "" {
		p.Language = body.Language
	}
	p.Bookmarks = model.NewBookmarks(body.Bookmarks).List()

	if err := s.repo.SavePreferences(r.Context(), u.ID, p); err != nil {
		logging.Error("save preferences failed", "error", err)
		fail(w, http.StatusInternalServerError, "Server error updating preferences")
		return
	}
	ok(w, http.StatusOK, "Preferences updated successfully", prefsResponse{Preferences: p})
}
