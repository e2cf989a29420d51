package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/AchilleasB/campus-library/library-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/services"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handler: failed to encode response: %v", err)
	}
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidationError:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidState:
		return http.StatusConflict
	case domain.KindRuleViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code and a structured body. Storage
// failures are logged and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Kind: "Unauthorized", Message: err.Error()})
		return
	case errors.Is(err, services.ErrAccountDisabled):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Kind: "Forbidden", Message: err.Error()})
		return
	}

	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindStorageError {
		log.Printf("handler: %s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Kind:    string(domain.KindStorageError),
			Reason:  string(domain.ReasonStorage),
			Message: "internal server error",
		})
		return
	}

	writeJSON(w, statusFor(de.Kind), ErrorResponse{
		Kind:    string(de.Kind),
		Reason:  string(de.Reason),
		Message: de.Message,
	})
}

func forbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, ErrorResponse{Kind: "Forbidden", Message: "forbidden"})
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("invalid request body")
	}
	return nil
}

// caller returns the authenticated principal. Routes are always wrapped by
// the auth middleware, so a missing principal is a wiring bug.
func caller(r *http.Request) middleware.Principal {
	p, _ := middleware.PrincipalFrom(r.Context())
	return p
}

// mayActFor reports whether the caller may read or act on userID's data.
func mayActFor(p middleware.Principal, userID string) bool {
	return p.Role.IsLibrarian() || p.UserID == userID
}

// ownerScope returns the user filter a listing should use: librarians see
// what they ask for, everyone else only their own records.
func ownerScope(p middleware.Principal, requested string) (string, bool) {
	if p.Role.IsLibrarian() {
		return requested, true
	}
	if requested != "" && requested != p.UserID {
		return "", false
	}
	return p.UserID, true
}
