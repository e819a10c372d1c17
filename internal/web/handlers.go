package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/extra-life-tools/donation-queue/internal/core"
	"github.com/extra-life-tools/donation-queue/internal/logging"
)

// handleHealth reports liveness and the size of the store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.service.Count(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"donations":   count,
		"subscribers": s.hub.SubscriberCount(),
	})
}

// handleListDonations returns donations matching the exact flag combination
// given by the approved/denied/shown query params (each "0"/"1", default 0).
func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	q := core.FlagQuery{}
	var err error
	if q.Approved, err = parseFlag(r, "approved"); err != nil {
		s.respondError(w, r, &core.BadInputError{Field: "approved", Err: err})
		return
	}
	if q.Denied, err = parseFlag(r, "denied"); err != nil {
		s.respondError(w, r, &core.BadInputError{Field: "denied", Err: err})
		return
	}
	if q.Shown, err = parseFlag(r, "shown"); err != nil {
		s.respondError(w, r, &core.BadInputError{Field: "shown", Err: err})
		return
	}

	recs, err := s.service.ListByFlags(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donationList(recs))
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.ListPending(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donationList(recs))
}

func (s *Server) handleListQueue(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.ListQueue(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donationList(recs))
}

func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleApprove approves a donation. The approval is committed even when
// the export append fails afterwards; in that case the client receives the
// export error and can re-approve to retry the export.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("donation approved", "id", rec.ID, "amount", rec.Amount)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeny(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Deny(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("donation denied", "id", rec.ID)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleMarkShown(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.MarkShown(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("donation shown", "id", rec.ID)
	writeJSON(w, http.StatusOK, rec)
}

// handleRefresh triggers one fetch-and-reconcile cycle. An upstream failure
// maps to 502 and changes nothing locally.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.FetchAndReconcile(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("manual refresh",
		"fetched", result.Fetched, "inserted", result.Inserted)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetExportSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ExportSettings())
}

func (s *Server) handleUpdateExportSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.ExportSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.respondError(w, r, &core.ConfigError{Path: "request body", Err: err})
		return
	}

	if err := s.service.UpdateExportSettings(settings); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("export settings updated",
		"path", settings.Dir, "file", settings.FileName, "format", settings.Format)
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reset(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Warn("all donation records cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handlePurgeTest(w http.ResponseWriter, r *http.Request) {
	purged, err := s.service.PurgeTestRecords(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("test donations purged", "purged", purged)
	writeJSON(w, http.StatusOK, map[string]int64{"purged": purged})
}

// seedRequest is the optional body of a test-donation request.
type seedRequest struct {
	Name    string  `json:"name"`
	Message string  `json:"message"`
	Amount  float64 `json:"amount"`
}

func (s *Server) handleSeedTestDonation(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, r, &core.ConfigError{Path: "request body", Err: err})
			return
		}
	}
	if req.Amount == 0 {
		req.Amount = 5
	}

	rec, err := s.service.SeedTestDonation(r.Context(), req.Name, req.Message, req.Amount)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleEvents streams live updates as server-sent events. The stream stays
// open until the client disconnects; events sent before the client
// connected are never replayed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := s.hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}

// parseFlag reads a boolean query param given as 0/1/true/false.
// A missing param is false.
func parseFlag(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("query param %s: %w", name, err)
	}
	return v, nil
}

// donationList guards against encoding nil slices as JSON null.
func donationList(recs []core.DonationRecord) []core.DonationRecord {
	if recs == nil {
		return []core.DonationRecord{}
	}
	return recs
}
