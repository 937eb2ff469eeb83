package handler

import (
	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// errorResponse mirrors the API error envelope for swagger.
type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=seeker owner"`
}

type profileRequest struct {
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Age        *int   `json:"age"        validate:"omitempty,gt=0"`
	Occupation string `json:"occupation"`
	Gender     string `json:"gender"`
}

func (r profileRequest) fields() domain.ProfileFields {
	return domain.ProfileFields{
		Phone:      r.Phone,
		Location:   r.Location,
		Age:        r.Age,
		Occupation: r.Occupation,
		Gender:     r.Gender,
	}
}

// loginResponse is returned after login and signup. The SPA stores token and
// user and then replaces the history entry with destination.
type loginResponse struct {
	Token       string              `json:"token"`
	User        *domain.UserProfile `json:"user"`
	Destination string              `json:"destination"`
	FirstVisit  bool                `json:"first_visit"`
}

func toLoginResponse(r *ports.LoginResult) loginResponse {
	return loginResponse{
		Token:       r.Token,
		User:        r.User,
		Destination: r.Destination,
		FirstVisit:  r.FirstVisit,
	}
}

type logoutResponse struct {
	Destination string `json:"destination"`
	Reload      bool   `json:"reload"`
}

type sessionResponse struct {
	Authenticated bool                `json:"authenticated"`
	User          *domain.UserProfile `json:"user,omitempty"`
	// Home is the user's role home, empty when logged out.
	Home string `json:"home,omitempty"`
}

func toSessionResponse(s domain.SessionRecord) sessionResponse {
	if !s.Authenticated() {
		return sessionResponse{}
	}
	return sessionResponse{
		Authenticated: true,
		User:          s.User,
		Home:          s.Role().HomePath(),
	}
}
