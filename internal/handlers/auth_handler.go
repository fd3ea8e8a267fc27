package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storeratings/internal/apperr"
	"storeratings/internal/middleware"
	"storeratings/internal/models"
	"storeratings/internal/services"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	userService  *services.UserService
	authService  *services.AuthService
	logger       zerolog.Logger
	cookieSecure bool
}

func NewAuthHandler(userService *services.UserService, authService *services.AuthService, logger zerolog.Logger, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		logger:       logger,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if len(req.FullName) < 2 || len(req.FullName) > 100 {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Name must be between 2 and 100 characters")
		return
	}
	if !validEmail(req.Email) {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Invalid email format")
		return
	}
	if !validRegisterPassword(req.Password) {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Password must be 8-16 chars, include 1 uppercase and 1 special character")
		return
	}
	if len(req.Address) > 400 {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Address must be maximum 400 characters")
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		respondServiceError(w, h.logger, "registration_failed", err)
		return
	}

	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
		return
	}

	h.setSessionCookie(w, token)
	respondWithJSON(w, http.StatusCreated, models.AuthResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Email and password are required")
		return
	}

	user, err := h.userService.Authenticate(&req)
	if err != nil {
		h.logger.Warn().Str("email", req.Email).Msg("Login failed")
		respondServiceError(w, h.logger, "authentication_failed", err)
		return
	}

	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
		return
	}

	h.setSessionCookie(w, token)
	respondWithJSON(w, http.StatusOK, models.AuthResponse{
		Message: "User logged in successfully",
		User:    user,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "User logged out successfully",
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.CurrentPassword == "" {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Current password is required")
		return
	}
	if !validNewPassword(req.NewPassword) {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "New password must be 6-50 chars, include 1 uppercase and 1 special character")
		return
	}

	if err := h.userService.ChangePassword(user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, h.logger, "change_password_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if len(req.Name) < 20 || len(req.Name) > 60 {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Name must be between 20 and 60 characters")
		return
	}
	if len(req.Address) > 400 {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Address must not exceed 400 characters")
		return
	}

	if err := h.userService.UpdateProfile(user.ID, req.Name, req.Address); err != nil {
		respondServiceError(w, h.logger, "profile_update_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Profile updated successfully",
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if !validEmail(req.Email) {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Please provide a valid email address")
		return
	}

	// The response is identical whether or not the account exists, so the
	// endpoint cannot be used to enumerate registered addresses.
	token, expiry, err := h.authService.GenerateResetToken()
	if err == nil {
		err = h.userService.StoreResetToken(req.Email, token, expiry)
	}
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			h.logger.Warn().Str("email", req.Email).Msg("Password reset requested for unknown email")
		} else {
			h.logger.Error().Err(err).Msg("Failed to prepare password reset")
		}
	} else {
		// Token would be handed to a mail sender here; log it until one is wired up.
		h.logger.Info().Str("email", req.Email).Str("reset_token", token).Msg("Password reset token generated")
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset instructions have been sent to your email",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Reset token is required")
		return
	}
	if !validNewPassword(req.NewPassword) {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "New password must be 6-50 chars, include 1 uppercase and 1 special character")
		return
	}

	if err := h.userService.ResetPassword(req.Token, req.NewPassword); err != nil {
		respondServiceError(w, h.logger, "reset_password_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Password has been reset successfully",
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
