package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// NetworkError means the request never got an HTTP answer.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: network error: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a local check that failed before any request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AuthError covers rejected credentials and writes attempted without a session.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Message, e.Err)
	}
	return "auth: " + e.Message
}
func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError is a doctor, appointment or patient id the backend does not know.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Resource, e.ID) }

// SaveError is a write that the backend answered with a non-2xx status.
type SaveError struct {
	Op  string
	Err error
}

func (e *SaveError) Error() string { return fmt.Sprintf("%s: save failed: %v", e.Op, e.Err) }
func (e *SaveError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response, before it is classified by the caller.
type StatusError struct {
	Status  int
	Message string
	Detail  string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Detail != "" {
		return fmt.Sprintf("http %d: %s (%s)", e.Status, msg, e.Detail)
	}
	return fmt.Sprintf("http %d: %s", e.Status, msg)
}

// IsStatus reports whether err carries an HTTP status equal to code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == code
}

// Classify converts a 404 into NotFoundError and a 401/403 into AuthError.
// Other errors are returned unchanged.
func Classify(err error, resource, id string) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Status {
	case http.StatusNotFound:
		return &NotFoundError{Resource: resource, ID: id}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Message: se.Message, Err: err}
	}
	return err
}

// UserMessage renders err for display. It never exposes internals.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		ne *NetworkError
		ve *ValidationError
		ae *AuthError
		nf *NotFoundError
		se *SaveError
		st *StatusError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return "Opération annulée."
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &ne):
		return "Impossible de joindre le serveur. Vérifiez votre connexion et réessayez."
	case errors.As(err, &ae):
		if ae.Message != "" {
			return ae.Message
		}
		return "Authentification requise. Veuillez vous reconnecter."
	case errors.As(err, &nf):
		return "Élément introuvable."
	case errors.As(err, &se):
		if errors.As(se.Err, &st) && st.Message != "" {
			return "Échec de l'enregistrement : " + st.Message
		}
		return "Échec de l'enregistrement. Vos modifications sont conservées, réessayez."
	case errors.As(err, &st):
		if st.Message != "" {
			return st.Message
		}
		return "Le serveur a refusé la requête."
	}
	return "Une erreur est survenue. Veuillez réessayer."
}
