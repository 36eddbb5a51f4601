package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/v1/about"

	EvaluateRoute = "/v1/access/evaluate"
	ExplainRoute  = "/v1/access/explain"

	AdminParent       = "/v1/admin/"
	ListControlsRoute = AdminParent + "controls"
	GetControlRoute   = AdminParent + "controls/{type}/{id}"
	ListAuditsRoute   = AdminParent + "audit"

	TaskParent       = "/v1/tasks/"
	ListTasksRoute   = TaskParent
	TriggerTaskRoute = TaskParent + "{name}/trigger"
	LogsForTaskRoute = TaskParent + "{name}/logs"
)
