package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/store"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned with 400 when a request body fails validation.
type ValidationError struct {
	Message string       `json:"error"`
	Fields  []FieldError `json:"fields"`
}

func (e ValidationError) Error() string {
	return e.Message
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError reports a failed store call. An unreachable backend is a 503
// so the client can keep its state and retry; anything else is a 500.
func writeStoreError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, store.ErrOffline):
		writeError(w, http.StatusServiceUnavailable, "store unreachable")
	case errors.Is(err, store.ErrCorrupt):
		writeError(w, http.StatusInternalServerError, "stored data is unreadable")
	default:
		writeError(w, http.StatusInternalServerError, message)
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// decodeValid decodes the body and validates it. It writes the error response
// itself and reports whether the handler should continue.
func decodeValid(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	if err := validateStruct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func validateStruct(v interface{}) *ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Message: "invalid request"}
	}
	out := &ValidationError{Message: "invalid request"}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: jsonPath(fe.Namespace()), Message: fieldMessage(fe)})
	}
	return out
}

func jsonPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "base64":
		return "must be base64 encoded"
	default:
		return "is invalid"
	}
}

func hasRole(user *models.User, roles ...models.Role) bool {
	if user == nil {
		return false
	}
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}

func isAdmin(user *models.User) bool {
	return user != nil && user.Role.IsAdmin()
}

// publicUser strips the password hash before a user leaves the service.
func publicUser(user models.User) models.User {
	user.PasswordHash = ""
	return user
}

func publicUsers(users []models.User) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, publicUser(u))
	}
	return out
}
