package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
)

// Регистрация пользователя
// (POST /user/create).
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if err := s.validate.Struct(req); err != nil {
		handleError(w, fmt.Errorf("validation error: %w", err), http.StatusBadRequest)

		return
	}

	u, err := s.authService.Register(r.Context(), authservice.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		handleServiceError(w, fmt.Errorf("create user error: %w", err))

		return
	}

	respondJSON(w, http.StatusCreated, u)
}

// Выдача токена по учётным данным
// (POST /user/token).
func (s *Server) createToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if err := s.validate.Struct(req); err != nil {
		handleError(w, fmt.Errorf("validation error: %w", err), http.StatusBadRequest)

		return
	}

	token, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, fmt.Errorf("login error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// Профиль аутентифицированного пользователя
// (GET /user/me).
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())

	respondJSON(w, http.StatusOK, ProfileResponse{Email: u.Email, Name: u.Name})
}

// Частичное обновление профиля
// (PATCH /user/me).
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req authservice.UpdateProfileRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if req.Email != nil {
		if err := s.validate.Var(*req.Email, "required,email"); err != nil {
			handleError(w, fmt.Errorf("validation error: %w", err), http.StatusBadRequest)

			return
		}
	}

	u, err := s.authService.UpdateProfile(r.Context(), userFromContext(r.Context()), req)
	if err != nil {
		handleServiceError(w, fmt.Errorf("update profile error: %w", err))

		return
	}

	respondJSON(w, http.StatusOK, ProfileResponse{Email: u.Email, Name: u.Name})
}
