package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/about"
	MetricsRoute     = "/metrics"

	ConfigRoute         = "/config"
	ExportRoute         = "/export"
	ExportStatusRoute   = ExportRoute + "/status"
	ExportDownloadRoute = ExportRoute + "/download"

	AssistantParent = "/assistant/"

	AdminParent           = "/v1/admin/"
	ListAuditsRoute       = AdminParent + "audit"
	ListActiveTokensRoute = AdminParent + "tokens"

	TaskParent       = AdminParent + "tasks"
	ListTasksRoute   = TaskParent
	TriggerTaskRoute = TaskParent + "/{name}/trigger"
	LogsForTaskRoute = TaskParent + "/{name}/logs"
)
