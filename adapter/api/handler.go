package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	identityApp "github.com/felixgeelhaar/quadra/internal/identity/application"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/commands"
	"github.com/felixgeelhaar/quadra/internal/productivity/application/queries"
	"github.com/felixgeelhaar/quadra/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/quadra/internal/shared/application"
	"github.com/felixgeelhaar/quadra/pkg/observability"
	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handler handles task, stats and admin requests.
type Handler struct {
	createTask   *commands.CreateTaskHandler
	updateTask   *commands.UpdateTaskHandler
	completeTask *commands.CompleteTaskHandler
	deleteTask   *commands.DeleteTaskHandler
	getTask      *queries.GetTaskHandler
	listTasks    *queries.ListTasksHandler
	searchTasks  *queries.SearchTasksHandler
	stats        *queries.StatsHandler
	listUsers    *identityApp.ListUsersHandler
	registerUser *identityApp.RegisterUserHandler
	refresh      RefreshRunner
	clock        sharedApplication.Clock
	metrics      observability.Metrics
	logger       *slog.Logger
}

// HandlerConfig holds dependencies for the handler.
type HandlerConfig struct {
	CreateTask   *commands.CreateTaskHandler
	UpdateTask   *commands.UpdateTaskHandler
	CompleteTask *commands.CompleteTaskHandler
	DeleteTask   *commands.DeleteTaskHandler
	GetTask      *queries.GetTaskHandler
	ListTasks    *queries.ListTasksHandler
	SearchTasks  *queries.SearchTasksHandler
	Stats        *queries.StatsHandler
	ListUsers    *identityApp.ListUsersHandler
	RegisterUser *identityApp.RegisterUserHandler
	Refresh      RefreshRunner
	Clock        sharedApplication.Clock
	Metrics      observability.Metrics
	Logger       *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	if cfg.Clock == nil {
		cfg.Clock = sharedApplication.SystemClock()
	}
	return &Handler{
		createTask:   cfg.CreateTask,
		updateTask:   cfg.UpdateTask,
		completeTask: cfg.CompleteTask,
		deleteTask:   cfg.DeleteTask,
		getTask:      cfg.GetTask,
		listTasks:    cfg.ListTasks,
		searchTasks:  cfg.SearchTasks,
		stats:        cfg.Stats,
		listUsers:    cfg.ListUsers,
		registerUser: cfg.RegisterUser,
		refresh:      cfg.Refresh,
		clock:        cfg.Clock,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}
}

// createTaskRequest is the body of POST /tasks.
type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsImportant bool       `json:"is_important"`
	DeadlineAt  *time.Time `json:"deadline_at"`
}

// updateTaskRequest is the body of PUT /tasks/{id}. Absent fields are left
// alone; "deadline_at": null clears the deadline.
type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	IsImportant *bool        `json:"is_important"`
	DeadlineAt  optionalTime `json:"deadline_at"`
	Completed   *bool        `json:"completed"`
}

// optionalTime tells an explicit null apart from an absent field.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

func (req updateTaskRequest) changes() task.Changes {
	ch := task.Changes{
		Title:       req.Title,
		Description: req.Description,
		Important:   req.IsImportant,
		Completed:   req.Completed,
	}
	if req.DeadlineAt.Set {
		if req.DeadlineAt.Value == nil {
			ch.ClearDeadline = true
		} else {
			ch.Deadline = req.DeadlineAt.Value
		}
	}
	return ch
}

// deleteTaskResponse is returned by DELETE /tasks/{id}.
type deleteTaskResponse struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
}

// updateTaskResponse is a task detail plus the fields that changed.
type updateTaskResponse struct {
	queries.TaskDetailDTO
	UpdatedFields []string `json:"updated_fields"`
}

// ListTasks handles GET /api/v1/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, queries.ListTasksQuery{})
}

// ListByQuadrant handles GET /api/v1/tasks/quadrant/{quadrant}
func (h *Handler) ListByQuadrant(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, queries.ListTasksQuery{Quadrant: r.PathValue("quadrant")})
}

// ListByStatus handles GET /api/v1/tasks/status/{status}
func (h *Handler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, queries.ListTasksQuery{Status: r.PathValue("status")})
}

// ListToday handles GET /api/v1/tasks/today
func (h *Handler) ListToday(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, queries.ListTasksQuery{DueToday: true})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, query queries.ListTasksQuery) {
	query.Actor = actorFrom(r.Context())
	tasks, err := h.listTasks.Handle(r.Context(), query)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// SearchTasks handles GET /api/v1/tasks/search?q=
func (h *Handler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.searchTasks.Handle(r.Context(), queries.SearchTasksQuery{
		Actor: actorFrom(r.Context()),
		Term:  r.URL.Query().Get("q"),
	})
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetTask handles GET /api/v1/tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	detail, err := h.getTask.Handle(r.Context(), queries.GetTaskQuery{Actor: actorFrom(r.Context()), TaskID: id})
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CreateTask handles POST /api/v1/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	result, err := h.createTask.Handle(r.Context(), commands.CreateTaskCommand{
		Actor:       actorFrom(r.Context()),
		Title:       req.Title,
		Description: req.Description,
		IsImportant: req.IsImportant,
		DeadlineAt:  req.DeadlineAt,
	})
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	h.metrics.Counter(observability.MetricTasksCreated, 1, observability.T("quadrant", result.Task.Quadrant().String()))
	writeJSON(w, http.StatusCreated, queries.NewTaskDTO(result.Task, h.clock.Now()))
}

// UpdateTask handles PUT /api/v1/tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	result, err := h.updateTask.Handle(r.Context(), commands.UpdateTaskCommand{
		Actor:   actorFrom(r.Context()),
		TaskID:  id,
		Changes: req.changes(),
	})
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	fields := result.Fields
	if fields == nil {
		fields = []string{}
	}
	writeJSON(w, http.StatusOK, updateTaskResponse{
		TaskDetailDTO: queries.NewTaskDetailDTO(result.Task, h.clock.Now()),
		UpdatedFields: fields,
	})
}

// CompleteTask handles PATCH /api/v1/tasks/{id}/complete
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	t, err := h.completeTask.Handle(r.Context(), commands.CompleteTaskCommand{Actor: actorFrom(r.Context()), TaskID: id})
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	h.metrics.Counter(observability.MetricTasksCompleted, 1, observability.T("quadrant", t.Quadrant().String()))
	writeJSON(w, http.StatusOK, queries.NewTaskDetailDTO(t, h.clock.Now()))
}

// DeleteTask handles DELETE /api/v1/tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	result, err := h.deleteTask.Handle(r.Context(), commands.DeleteTaskCommand{Actor: actorFrom(r.Context()), TaskID: id})
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	h.metrics.Counter(observability.MetricTasksDeleted, 1)
	writeJSON(w, http.StatusOK, deleteTaskResponse{
		ID:      result.ID,
		Title:   result.Title,
		Message: "task deleted",
	})
}

// Stats handles GET /api/v1/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Deadlines handles GET /api/v1/stats/deadlines
func (h *Handler) Deadlines(w http.ResponseWriter, r *http.Request) {
	deadlines, err := h.stats.Deadlines(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deadlines)
}

func taskID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &sharedApplication.ValidationError{Field: "id", Message: fmt.Sprintf("%q is not a task id", raw)}
	}
	return id, nil
}

// decodeJSON reads a single JSON object into dst. Malformed bodies are
// validation errors.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &sharedApplication.ValidationError{Field: "body", Message: "request body is empty"}
		}
		return &sharedApplication.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}
