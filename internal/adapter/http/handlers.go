package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/couchcryptid/shelter-data-etl-service/internal/export"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// noDataMessage is the single error body shown while no snapshot exists.
const noDataMessage = "дані недоступні"

type snapshotHandler func(w http.ResponseWriter, r *http.Request, snap domain.Snapshot)

type errorBody struct {
	Error string `json:"error"`
}

type snapshotInfo struct {
	PayloadHash string                `json:"payload_hash"`
	SourceURL   string                `json:"source_url"`
	BuiltAt     time.Time             `json:"built_at"`
	Stats       domain.NormalizeStats `json:"stats"`
}

// withSnapshot resolves the current snapshot, answering 503 while there is
// none.
func (s *Server) withSnapshot(next snapshotHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.snapshots.Snapshot()
		if err != nil {
			if !errors.Is(err, domain.ErrNoData) {
				s.logger.Error("snapshot lookup failed", "error", err, "path", r.URL.Path)
			}
			sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorBody{Error: noDataMessage})
			return
		}
		next(w, r, snap)
	}
}

// filtered applies the request's filter to the display table. It writes a
// 400 and returns false when the query is invalid.
func (s *Server) filtered(w http.ResponseWriter, r *http.Request, snap domain.Snapshot) ([]domain.DisplayShelter, bool) {
	f, err := s.parseFilter(r.URL.Query())
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return nil, false
	}
	return domain.Search(snap.Display, f), true
}

func (s *Server) handleSnapshotInfo(w http.ResponseWriter, _ *http.Request, snap domain.Snapshot) {
	sharedobs.WriteJSON(w, http.StatusOK, snapshotInfo{
		PayloadHash: snap.PayloadHash,
		SourceURL:   snap.SourceURL,
		BuiltAt:     snap.BuiltAt,
		Stats:       snap.Stats,
	})
}

func (s *Server) handleShelters(w http.ResponseWriter, r *http.Request, snap domain.Snapshot) {
	rows, ok := s.filtered(w, r, snap)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, rows)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request, snap domain.Snapshot) {
	rows, ok := s.filtered(w, r, snap)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, domain.WithLocation(rows))
}

func (s *Server) handleCanonical(w http.ResponseWriter, _ *http.Request, snap domain.Snapshot) {
	sharedobs.WriteJSON(w, http.StatusOK, snap.Shelters)
}

func (s *Server) handleXLSX(w http.ResponseWriter, r *http.Request, snap domain.Snapshot) {
	rows, ok := s.filtered(w, r, snap)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="shelters.xlsx"`)
	if err := export.WriteXLSX(w, rows); err != nil {
		s.logger.Error("xlsx export failed", "error", err, "rows", len(rows))
	}
}

func (s *Server) handleCommunityOptions(w http.ResponseWriter, _ *http.Request, snap domain.Snapshot) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.CommunityOptions(snap.Display))
}

func (s *Server) handleSettlementOptions(w http.ResponseWriter, r *http.Request, snap domain.Snapshot) {
	community := r.URL.Query().Get("community")
	sharedobs.WriteJSON(w, http.StatusOK, domain.SettlementOptions(snap.Display, community))
}

func (s *Server) handleTypeOptions(w http.ResponseWriter, _ *http.Request, snap domain.Snapshot) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.TypeOptions(snap.Display))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, snap domain.Snapshot) {
	rows, ok := s.filtered(w, r, snap)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, domain.Summarize(rows))
}

func (s *Server) handleCapacityByType(w http.ResponseWriter, r *http.Request, snap domain.Snapshot) {
	rows, ok := s.filtered(w, r, snap)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, domain.CapacityByType(rows))
}

// handleTopSettlements scopes the chart by the selected community or
// settlement rather than by the full filter.
func (s *Server) handleTopSettlements(w http.ResponseWriter, r *http.Request, snap domain.Snapshot) {
	f, err := s.parseFilter(r.URL.Query())
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	rows, n := domain.ChartScope(snap.Display, f.Community, f.Settlement)
	sharedobs.WriteJSON(w, http.StatusOK, domain.TopSettlements(rows, n))
}
