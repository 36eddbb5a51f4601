package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/doorman-ac/doorman/internal/core"
	"github.com/doorman-ac/doorman/internal/engine"
	"github.com/doorman-ac/doorman/internal/logging"
)

// DecisionService is the main service that answers access decisions
type DecisionService struct {
	store   core.ControlStore
	auditor core.Auditor
}

func NewDecisionService(store core.ControlStore, auditor core.Auditor) *DecisionService {
	return &DecisionService{
		store:   store,
		auditor: auditor,
	}
}

func (s *DecisionService) Evaluate(ctx context.Context, req EvaluateRequest) (*core.EvaluationResult, error) {
	logger := log.Ctx(ctx)
	reqID := logging.CorrelationID(ctx)

	auditEntry := core.AuditEntry{
		ID:           reqID,
		Time:         time.Now(),
		Action:       "access.evaluate",
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		ActorID:      req.User.ID,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for access decision")
		}
	}()

	ectx, err := s.buildContext(req)
	if err != nil {
		auditEntry.Error = err.Error()
		return nil, httpError(http.StatusBadRequest, err)
	}

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("actor", req.User.ID).Str("resource", req.ResourceType+":"+req.ResourceID)
	})

	control, err := s.store.Get(ctx, req.ResourceType, req.ResourceID)
	if err != nil {
		auditEntry.Error = err.Error()
		if errors.Is(err, core.ErrControlNotFound) {
			return nil, httpError(http.StatusNotFound, err)
		}
		return nil, httpError(http.StatusInternalServerError,
			fmt.Errorf("loading access control: %w", err))
	}

	result := engine.Evaluate(control, ectx)

	auditEntry.Allowed = result.Allowed
	auditEntry.AccessLevel = result.AccessLevel
	auditEntry.Reason = result.Reason
	auditEntry.Trace = result.EvaluationTrace
	auditEntry.DurationMs = result.ExecutionTimeMs

	logger.Debug().
		Bool("allowed", result.Allowed).
		Str("reason", result.Reason).
		Float64("duration_ms", result.ExecutionTimeMs).
		Msg("access decision made")

	return result, nil
}

func (s *DecisionService) Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error) {
	logger := log.Ctx(ctx)

	if req.ReplayID != "" {
		logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("replay_id", req.ReplayID)
		})
		return s.replay(req.ReplayID)
	}

	result, err := s.Evaluate(ctx, req.EvaluateRequest)
	if err != nil {
		return nil, err
	}
	return &ExplainResponse{
		Allowed:     result.Allowed,
		AccessLevel: result.AccessLevel,
		Reason:      result.Reason,
		Trace:       result.EvaluationTrace,
		Result:      result,
	}, nil
}

// replay fetches a past decision from the audit log. This only works with
// auditors that support reading back entries.
func (s *DecisionService) replay(replayID string) (*ExplainResponse, error) {
	reader, ok := s.auditor.(core.AuditReader)
	if !ok {
		return nil, httpError(http.StatusNotImplemented,
			fmt.Errorf("configured auditor does not support replay"))
	}

	entries, err := reader.Find(func(entry core.AuditEntry) bool {
		return entry.ID == replayID
	}, 1)
	if err != nil {
		return nil, httpError(http.StatusInternalServerError,
			fmt.Errorf("failed to retrieve audit log for replay: %w", err))
	}
	if len(entries) == 0 {
		return nil, httpError(http.StatusNotFound,
			fmt.Errorf("audit log entry with ID '%s' not found for replay", replayID))
	}

	entry := entries[0]
	return &ExplainResponse{
		Allowed:     entry.Allowed,
		AccessLevel: entry.AccessLevel,
		Reason:      entry.Reason,
		Trace:       entry.Trace,
		Replayed:    true,
	}, nil
}

func (s *DecisionService) buildContext(req EvaluateRequest) (*core.EvaluationContext, error) {
	if req.ResourceType == "" {
		return nil, fmt.Errorf("resourceType is required")
	}
	if req.ResourceID == "" {
		return nil, fmt.Errorf("resourceId is required")
	}
	if req.User.ID == "" {
		return nil, fmt.Errorf("user.id is required")
	}

	var (
		now core.Snapshot
		err error
	)
	if req.Now != nil {
		if now, err = core.NewSnapshot(req.Now.Date, req.Now.Time, req.Now.Day); err != nil {
			return nil, fmt.Errorf("invalid now override: %w", err)
		}
	} else {
		now = core.SnapshotAt(time.Now())
	}

	return &core.EvaluationContext{
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		User:         req.User,
		Request:      req.Request,
		Now:          now,
	}, nil
}
