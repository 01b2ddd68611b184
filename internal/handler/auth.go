package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/linklair/internal/apperror"
	"github.com/sakif/linklair/internal/service"
)

// AuthHandler exposes registration and login over HTTP.
//
// The handler's only jobs are parsing, validating, and translating — all
// rules about hashing, uniqueness, and token issuance live in AuthService.
type AuthHandler struct {
	auth     *service.AuthService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. The validator instance is shared
// across handlers (it caches struct metadata, so one instance per process).
func NewAuthHandler(auth *service.AuthService, validate *validator.Validate, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		validate: validate,
		logger:   logger,
	}
}

// RegisterRequest is the body of POST /api/auth/register.
// The validate tags are the request-level rules; uniqueness is enforced
// deeper down by the database.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// RegisterResponse echoes the created account. No token and no digest —
// the client logs in as a separate step.
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the signed bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
// Responses: 201 on success, 400 on validation failure, 409 on duplicate
// username or email.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// HandleLogin verifies credentials and returns a token.
//
// HTTP: POST /api/auth/login
// Responses: 200 with {token}, 401 on unknown email or wrong password
// (the two are indistinguishable to the caller), 400 on a malformed body.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// validationError converts a validator.ValidationErrors into our 400-mapped
// apperror, keeping the first offending field for the response body.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.ValidationFailed(jsonFieldName(fe), validationMessage(fe))
	}
	return apperror.ValidationFailed("", "invalid request body")
}

// jsonFieldName lowercases the struct field name to match the JSON tags used
// by the request structs in this package.
func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return string(name[0]|0x20) + name[1:]
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return jsonFieldName(fe) + " is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return jsonFieldName(fe) + " must be at least " + fe.Param() + " characters"
	case "max":
		return jsonFieldName(fe) + " must be at most " + fe.Param() + " characters"
	default:
		return jsonFieldName(fe) + " is invalid"
	}
}
