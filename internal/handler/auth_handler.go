package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"QuakeWatchAPI/internal/config"
	"QuakeWatchAPI/internal/logger"
	"QuakeWatchAPI/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	security *config.SecurityConfig
	log      *logger.Logger
}

func NewAuthHandler(security *config.SecurityConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		security: security,
		log:      log,
	}
}

func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Invalid request body: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username != h.security.AdminUsername {
		h.log.Warn("Login attempt for unknown user %q", req.Username)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.security.AdminPasswordHash), []byte(req.Password)); err != nil {
		h.log.Warn("Failed login attempt for %q", req.Username)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	expiresAt := time.Now().Add(time.Duration(h.security.JWTExpirationHours) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": req.Username,
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(h.security.JWTSecret))
	if err != nil {
		h.log.Error("Failed to sign token: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	h.log.Info("User %q logged in", req.Username)
	respondJSON(w, http.StatusOK, models.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
	})
}
