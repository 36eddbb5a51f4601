package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/doorman-ac/doorman/internal/api/presenter"
	"github.com/doorman-ac/doorman/internal/core"
)

type ListControlsResponse struct {
	Items []*core.AccessControl `json:"items"`
	Total int                   `json:"total"`
}

// handleAdminListControls returns a page of the configured access controls.
func (s *Server) handleAdminListControls(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	q := r.URL.Query()
	opts := core.ListOptions{
		Search:       q.Get("search"),
		ResourceType: q.Get("resource_type"),
	}

	var err error
	if opts.Limit, err = intParam(q.Get("limit"), 50); err != nil {
		presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
		return
	}
	if opts.Offset, err = intParam(q.Get("offset"), 0); err != nil {
		presenter.Error(w, r, "invalid offset parameter", http.StatusBadRequest)
		return
	}

	items, total, err := s.store.List(ctx, opts)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list access controls")
		presenter.Error(w, r, "failed to list access controls", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, ListControlsResponse{Items: items, Total: total}, http.StatusOK)
}

// handleAdminGetControl returns a single control by resource type and id.
func (s *Server) handleAdminGetControl(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	resourceType := r.PathValue("type")
	resourceID := r.PathValue("id")

	control, err := s.store.Get(ctx, resourceType, resourceID)
	if err != nil {
		if errors.Is(err, core.ErrControlNotFound) {
			presenter.Error(w, r, err.Error(), http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Msg("failed to load access control")
		presenter.Error(w, r, "failed to load access control", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, control, http.StatusOK)
}

// handleAdminAudit processes requests to retrieve audit log entries.
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	reader, ok := s.auditor.(core.AuditReader)
	if !ok {
		presenter.Error(w, r, "configured auditor does not support queries", http.StatusNotImplemented)
		return
	}

	// filters
	q := r.URL.Query()

	filterCorrelationID := q.Get("correlation_id")
	filterActorID := q.Get("actor_id")
	filterResourceType := q.Get("resource_type")
	filterResourceID := q.Get("resource_id")

	limit, err := intParam(q.Get("limit"), 50)
	if err != nil {
		logger.Warn().Err(err).Str("limit", q.Get("limit")).Msg("invalid limit parameter")
		presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
		return
	}

	var entries []core.AuditEntry

	if filterCorrelationID != "" || filterActorID != "" || filterResourceType != "" || filterResourceID != "" {
		logger.Info().Msgf("applying audit log filters")
		entries, err = reader.Find(func(entry core.AuditEntry) bool {
			if filterCorrelationID != "" && entry.ID != filterCorrelationID {
				return false
			}
			if filterActorID != "" && entry.ActorID != filterActorID {
				return false
			}
			if filterResourceType != "" && entry.ResourceType != filterResourceType {
				return false
			}
			if filterResourceID != "" && entry.ResourceID != filterResourceID {
				return false
			}
			return true
		}, limit)
	} else {
		log.Debug().Msgf("retrieving recent audit log entries")
		entries, err = reader.GetRecent(limit)
	}

	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit logs")
		presenter.Error(w, r, "failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, entries, http.StatusOK)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
