package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error        string                    `json:"error"`
	Field        string                    `json:"field,omitempty"`
	PendingItems []maintenance.PendingItem `json:"pending_items,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// statusFor maps the engine's error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var validation *maintenance.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, maintenance.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, maintenance.ErrIllegalTransition), errors.Is(err, maintenance.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var validation *maintenance.ValidationError
	if errors.As(err, &validation) {
		resp.Field = validation.Field
	}
	var blocked *maintenance.ClosureBlockedError
	if errors.As(err, &blocked) {
		resp.PendingItems = blocked.Pending
	}
	writeJSON(w, statusFor(err), resp)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return maintenance.Invalid("body", "%v", err)
	}
	return nil
}

func parseID(field, value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, maintenance.Invalid(field, "%q is not a valid id", value)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	return parseID(name, r.PathValue(name))
}
