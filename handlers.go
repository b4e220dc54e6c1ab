package backoffice

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// LoginResponse is the HTTP shape of a login attempt.
type LoginResponse struct {
	Success    bool   `json:"success"`
	User       *User  `json:"user,omitempty"`
	Token      string `json:"token,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"-"`
}

// RegisterResponse is the HTTP shape of a registration attempt.
type RegisterResponse struct {
	Success    bool      `json:"success"`
	User       *User     `json:"user,omitempty"`
	Token      string    `json:"token,omitempty"`
	Error      string    `json:"error,omitempty"`
	Kind       ErrorKind `json:"type,omitempty"`
	StatusCode int       `json:"-"`
}

// LogoutResponse is the HTTP shape of a logout.
type LogoutResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

// MeResponse is the HTTP shape of the current-user lookup.
type MeResponse struct {
	User       *User  `json:"user,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"-"`
}

// LoginHandler processes a login request body and maps the store's result
// onto HTTP statuses. The caller writes the response:
//
//	result := svc.LoginHandler(r)
//	w.WriteHeader(result.StatusCode)
//	json.NewEncoder(w).Encode(result)
func (s *Service) LoginHandler(r *http.Request) LoginResponse {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		slog.Debug("Failed to decode login request", "error", err)
		return LoginResponse{StatusCode: http.StatusBadRequest, Error: "Invalid request format"}
	}

	result := s.Store.Login(r.Context(), creds)
	if !result.Success {
		status := http.StatusUnauthorized
		if result.Error == ErrConnection.Error() {
			status = http.StatusBadGateway
		}
		return LoginResponse{StatusCode: status, Error: result.Error}
	}

	return LoginResponse{
		StatusCode: http.StatusOK,
		Success:    true,
		User:       result.User,
		Token:      result.Token,
	}
}

// RegisterHandler processes a registration request body.
func (s *Service) RegisterHandler(r *http.Request) RegisterResponse {
	var profile Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		slog.Debug("Failed to decode register request", "error", err)
		return RegisterResponse{
			StatusCode: http.StatusBadRequest,
			Error:      "Invalid request format",
			Kind:       KindGeneral,
		}
	}

	result := s.Store.Register(r.Context(), profile)
	if !result.Success {
		status := http.StatusBadRequest
		if result.Error == ErrConnection.Error() {
			status = http.StatusBadGateway
		}
		return RegisterResponse{StatusCode: status, Error: result.Error, Kind: result.Kind}
	}

	return RegisterResponse{
		StatusCode: http.StatusCreated,
		Success:    true,
		User:       result.User,
		Token:      result.Token,
	}
}

// LogoutHandler ends the session. Local-only and idempotent, so it always
// succeeds.
func (s *Service) LogoutHandler(r *http.Request) LogoutResponse {
	s.Store.Logout()
	return LogoutResponse{StatusCode: http.StatusOK, Message: "logged out"}
}

// MeHandler reports the current session user.
func (s *Service) MeHandler(r *http.Request) MeResponse {
	user := s.Store.User()
	if user == nil {
		return MeResponse{StatusCode: http.StatusUnauthorized, Error: "not authenticated"}
	}
	return MeResponse{StatusCode: http.StatusOK, User: user}
}
