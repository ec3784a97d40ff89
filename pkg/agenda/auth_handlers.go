package agenda

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"agenda/pkg/client"
)

func (a *App) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req client.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	token, expiresAt, err := a.auth.SignIn(req.Email, req.Password, req.Remember)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, client.AuthResponse{
		Token:     token,
		Email:     req.Email,
		ExpiresAt: expiresAt.UnixMilli(),
	})
}

func (a *App) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if token := getTokenFromHeader(r); token != "" {
		a.auth.Revoke(token)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (a *App) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	token := getTokenFromHeader(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	email, err := a.auth.Verify(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"email": email})
}

// requireAdmin gates mutating routes behind a valid admin token.
func (a *App) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := getTokenFromHeader(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if _, err := a.auth.Verify(token); err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

// getTokenFromHeader extracts the bearer token from the Authorization header
func getTokenFromHeader(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
