package server

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/halflife/internal/analyzer"
	"github.com/lazypower/halflife/internal/catalog"
	"github.com/lazypower/halflife/internal/intake"
	"github.com/lazypower/halflife/internal/report"
	"github.com/lazypower/halflife/internal/tracker"
)

func (s *Server) handleListIntakes(w http.ResponseWriter, r *http.Request) {
	events := s.tracker.Events()
	if day := r.URL.Query().Get("date"); day != "" {
		d, err := time.Parse(time.DateOnly, day)
		if err != nil {
			badRequest(w, "date must be YYYY-MM-DD")
			return
		}
		local := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, s.tracker.Location())
		var total float64
		events, total = s.tracker.DayLog(local)
		writeJSON(w, http.StatusOK, map[string]any{
			"intakes":  nonNil(events),
			"total_mg": total,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"intakes": nonNil(events)})
}

func nonNil(events []intake.Event) []intake.Event {
	if events == nil {
		return []intake.Event{}
	}
	return events
}

func (s *Server) handleAddIntake(w http.ResponseWriter, r *http.Request) {
	var req tracker.AddRequest
	if err := readBodyJSON(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	res, err := s.tracker.Add(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleRemoveIntake(w http.ResponseWriter, r *http.Request) {
	e, err := s.tracker.Remove(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleSetSymptoms(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symptoms []string `json:"symptoms"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	e, err := s.tracker.SetSymptoms(chi.URLParam(r, "id"), req.Symptoms)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCorrectIntake(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      *string    `json:"name"`
		AmountMg  *float64   `json:"amount_mg"`
		Timestamp *time.Time `json:"timestamp"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	e, err := s.tracker.Correct(chi.URLParam(r, "id"), intake.Correction{
		Name:      req.Name,
		AmountMg:  req.AmountMg,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.tracker.Status()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	hours, err := parseInt(r.URL.Query().Get("hours"), 12)
	if err != nil || hours <= 0 || hours > 72 {
		badRequest(w, "hours must be between 1 and 72")
		return
	}
	pts, err := s.tracker.Curve(hours)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": pts})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	in, ok := s.tracker.Insights()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"insight": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insight": in})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	days, err := parseInt(r.URL.Query().Get("days"), report.Week)
	if err != nil || days <= 0 || days > 366 {
		badRequest(w, "days must be between 1 and 366")
		return
	}
	rep, err := s.tracker.Report(days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Settings())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	// Missing fields keep their current value.
	settings := s.tracker.Settings()
	if err := readBodyJSON(r, &settings); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if err := s.tracker.UpdateSettings(settings); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"brands": catalog.Brands()})
}

func (s *Server) handleSymptoms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"symptoms": intake.Symptoms()})
}

// handleAnalyze accepts either a multipart form with an "image" file or a
// raw image body. It always answers 200 with an estimate.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	image, mediaType, err := readImage(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	est := s.tracker.Analyze(r.Context(), image, mediaType)
	writeJSON(w, http.StatusOK, est)
}

func readImage(r *http.Request) ([]byte, string, error) {
	limit := int64(analyzer.MaxImageBytes) + 1
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(limit); err != nil {
			return nil, "", err
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, limit))
		if err != nil {
			return nil, "", err
		}
		return data, mediaTypeOf(hdr.Header.Get("Content-Type"), data), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		return nil, "", err
	}
	return data, mediaTypeOf(ct, data), nil
}

func mediaTypeOf(declared string, data []byte) string {
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	return http.DetectContentType(data)
}
