package daemon

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/theirongolddev/debtfree/internal/apperr"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err as {error, message}. Internal and persistence
// details are logged, never sent.
func writeError(w http.ResponseWriter, err error) {
	e := apperr.As(err)
	status := e.HTTPStatus()
	message := e.Message
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		if rec, ok := w.(*statusRecorder); ok {
			rec.err = err
		}
		message = "internal error"
		if e.Kind == apperr.KindPersistence {
			message = "storage unavailable"
		}
	}
	writeJSON(w, status, errorBody{Error: string(e.Code), Message: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation(apperr.CodeBadRequest, "request body must be a JSON object")
	}
	return nil
}
