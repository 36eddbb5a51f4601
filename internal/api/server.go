package api

import (
	"net/http"

	"github.com/doorman-ac/doorman/internal/api/middleware"
	"github.com/doorman-ac/doorman/internal/audit"
	"github.com/doorman-ac/doorman/internal/core"
	"github.com/doorman-ac/doorman/internal/service"
	"github.com/doorman-ac/doorman/internal/tasks"
)

type Server struct {
	store           core.ControlStore
	taskManager     *tasks.Manager
	auditor         core.Auditor
	decisionService *service.DecisionService
}

func NewServer(
	store core.ControlStore,
	taskManager *tasks.Manager,
	auditor core.Auditor,
) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}

	svc := service.NewDecisionService(store, auditor)

	return &Server{
		store:           store,
		taskManager:     taskManager,
		auditor:         auditor,
		decisionService: svc,
	}
}

func (s *Server) Routes(adminSigningKey []byte) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// decision route
	mux.HandleFunc("POST "+EvaluateRoute, s.handleEvaluate)

	// admin routes
	adminAuth := middleware.AdminAuth(adminSigningKey)

	adminMux := http.NewServeMux()
	adminMux.HandleFunc("POST "+ExplainRoute, s.handleExplain)
	adminMux.HandleFunc("GET "+ListControlsRoute, s.handleAdminListControls)
	adminMux.HandleFunc("GET "+GetControlRoute, s.handleAdminGetControl)
	adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAdminAudit)
	mux.Handle(ExplainRoute, adminAuth(adminMux))
	mux.Handle(AdminParent, adminAuth(adminMux))

	taskMux := http.NewServeMux()
	taskMux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
	taskMux.HandleFunc("POST "+TriggerTaskRoute, s.handleTriggerTask)
	taskMux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)
	mux.Handle(TaskParent, adminAuth(taskMux))

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
