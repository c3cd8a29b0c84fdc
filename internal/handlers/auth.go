// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"blockpress/internal/middleware"
	"blockpress/internal/session"
)

// totpIssuer names the account in authenticator apps.
const totpIssuer = "BlockPress"

// Auth groups the admin authentication handlers.
type Auth struct {
	sessions Sessions
	users    UserStore
}

// NewAuth creates the Auth handler group.
func NewAuth(sessions Sessions, users UserStore) *Auth {
	return &Auth{sessions: sessions, users: users}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=200"`
}

func (req *loginRequest) normalize() {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

type verifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// meResponse describes the signed-in user.
type meResponse struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	TwoFADone   bool   `json:"two_fa_done"`
}

func me(sess *session.Data) meResponse {
	return meResponse{
		UserID:      sess.UserID.String(),
		Email:       sess.Email,
		DisplayName: sess.DisplayName,
		Role:        string(sess.Role),
		TwoFADone:   sess.TwoFADone,
	}
}

// Login checks credentials and starts a session that still needs 2FA.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		serverError(w, r, "login lookup failed", err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		zap.S().Infow("login rejected", "email", req.Email, "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	sess := &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}
	if _, err := a.sessions.Create(r.Context(), w, sess); err != nil {
		serverError(w, r, "session create failed", err)
		return
	}

	zap.S().Infow("login accepted", "user_id", user.ID, "needs_2fa_setup", user.Needs2FASetup())
	writeJSON(w, http.StatusOK, map[string]any{
		"user":           me(sess),
		"two_fa_setup":   user.Needs2FASetup(),
		"two_fa_pending": true,
	})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		zap.S().Warnw("session destroy failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TwoFASetup generates a TOTP secret for a user who has not enrolled yet
// and returns it with a base64 QR code PNG.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		serverError(w, r, "user lookup for 2fa setup failed", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	// Re-enrolling would let a password alone replace the second factor.
	if user.TOTPEnabled {
		writeError(w, http.StatusConflict, "two-factor authentication is already enabled")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		serverError(w, r, "totp generate failed", err)
		return
	}
	if err := a.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		serverError(w, r, "save totp secret failed", err)
		return
	}
	png, err := qrCode(key)
	if err != nil {
		serverError(w, r, "qr code generation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":  key.Secret(),
		"url":     key.URL(),
		"qr_code": png,
	})
}

func qrCode(key *otp.Key) (string, error) {
	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// TwoFAVerify checks a TOTP code, enables 2FA on first use and completes
// the session.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		serverError(w, r, "user lookup for 2fa failed", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, http.StatusConflict, "two-factor authentication is not set up")
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "invalid code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			serverError(w, r, "enable totp failed", err)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		serverError(w, r, "session update failed", err)
		return
	}
	writeJSON(w, http.StatusOK, me(sess))
}

// Me returns the signed-in user.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, me(middleware.SessionFromCtx(r.Context())))
}
