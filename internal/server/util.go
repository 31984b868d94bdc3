package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/lazypower/halflife/internal/catalog"
	"github.com/lazypower/halflife/internal/intake"
	"github.com/lazypower/halflife/internal/tracker"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBodyJSON(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("empty body")
	}
	return json.Unmarshal(body, out)
}

func parseInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, intake.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrPersist):
		return http.StatusInternalServerError
	case errors.Is(err, intake.ErrInvalidDose),
		errors.Is(err, intake.ErrInvalidTimestamp),
		errors.Is(err, intake.ErrUnknownSource),
		errors.Is(err, intake.ErrUnknownSymptom),
		errors.Is(err, intake.ErrInvalidHalfLife),
		errors.Is(err, intake.ErrInvalidLimit),
		errors.Is(err, intake.ErrInvalidThreshold),
		errors.Is(err, intake.ErrInvalidClock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
