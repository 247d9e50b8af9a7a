package api

import (
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/garnizeh/hikelog/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (d *Deps) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		http.Error(w, "name, email and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	}

	existing, err := d.Users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		logger.Error("lookup user", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "email already registered", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	u := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    models.Timestamp(),
	}
	id, err := d.Users.CreateUser(r.Context(), u)
	if err != nil {
		logger.Error("create user", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	u.ID = id

	writeJSON(w, u, http.StatusCreated)
}

func (d *Deps) SigninHandler(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := d.Users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		logger.Error("lookup user", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if u == nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"exp":     time.Now().Add(d.Cfg.TokenDuration).Unix(),
	})
	signed, err := token.SignedString([]byte(d.Cfg.JWTSecret))
	if err != nil {
		logger.Error("sign token", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// signing in also installs the principal for the background sync engine
	d.Tokens.SignIn(u)

	writeJSON(w, authResponse{Token: signed, User: u}, http.StatusOK)
}

func (d *Deps) SignoutHandler(w http.ResponseWriter, r *http.Request) {
	d.Tokens.SignOut()
	w.WriteHeader(http.StatusNoContent)
}
