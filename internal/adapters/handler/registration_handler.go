package handler

import (
	"net/http"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

// RegistrationHandler serves self-service sign up. New accounts are always
// students; other roles are created by an admin through UserHandler.
type RegistrationHandler struct {
	users ports.UserService
}

func NewRegistrationHandler(users ports.UserService) *RegistrationHandler {
	return &RegistrationHandler{users: users}
}

type RegistrationRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), domain.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(*user))
}
