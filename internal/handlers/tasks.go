package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"carecircle-server/internal/middleware"
	"carecircle-server/internal/models"
	"carecircle-server/internal/utils"
)

// TaskHandler manages the caregiver checklist.
type TaskHandler struct{ *Env }

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(env *Env) *TaskHandler {
	return &TaskHandler{Env: env}
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	PatientID string    `json:"patientId" binding:"required"`
	Title     string    `json:"title" binding:"required,max=200"`
	Category  string    `json:"category" binding:"required,oneof=vitals exercise diet hygiene medication"`
	DueAt     time.Time `json:"dueAt" binding:"required"`
	Repeat    string    `json:"repeat" binding:"omitempty,oneof=none daily weekly"`
	Notes     string    `json:"notes" binding:"max=2000"`
}

// TaskView is a task with its status at request time.
type TaskView struct {
	models.CareTask
	Status models.TaskStatus `json:"status"`
}

func viewTask(t models.CareTask, now time.Time) TaskView {
	return TaskView{CareTask: t, Status: t.StatusAt(now)}
}

// CreateTask adds a checklist item.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	p, ok := h.authorizePatient(c, req.PatientID)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	repeat := models.RepeatNone
	if req.Repeat != "" {
		repeat = models.TaskRepeat(req.Repeat)
	}
	t := models.CareTask{
		PatientID:   p.ID,
		Title:       strings.TrimSpace(req.Title),
		Category:    models.TaskCategory(req.Category),
		DueAt:       req.DueAt,
		Repeat:      repeat,
		Notes:       req.Notes,
		CreatedByID: userID,
	}
	if err := h.Store.Tasks.Create(c.Request.Context(), &t); err != nil {
		h.storeError(c, err, "Care task")
		return
	}
	utils.Created(c, "Care task created successfully", viewTask(t, h.Now()))
}

// GetTasksForPatient lists tasks ordered by due time.
func (h *TaskHandler) GetTasksForPatient(c *gin.Context) {
	p, ok := h.authorizePatient(c, c.Param("patientId"))
	if !ok {
		return
	}
	list, err := h.Store.Tasks.ListByPatient(c.Request.Context(), p.ID)
	if err != nil {
		h.storeError(c, err, "Care tasks")
		return
	}
	now := h.Now()
	out := make([]TaskView, 0, len(list))
	for _, t := range list {
		out = append(out, viewTask(t, now))
	}
	utils.Success(c, "Care tasks fetched successfully", out)
}

// CompleteTaskResponse carries the finished task and, for repeating tasks,
// the next occurrence.
type CompleteTaskResponse struct {
	Task TaskView  `json:"task"`
	Next *TaskView `json:"next,omitempty"`
}

// CompleteTask marks a task done.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	ctx := c.Request.Context()
	t, err := h.Store.Tasks.Get(ctx, c.Param("id"))
	if err != nil {
		h.storeError(c, err, "Care task")
		return
	}
	if _, ok := h.authorizePatient(c, t.PatientID); !ok {
		return
	}
	if t.CompletedAt != nil {
		utils.BadRequest(c, "Care task is already completed")
		return
	}

	now := h.Now()
	next, err := h.Store.Tasks.Complete(ctx, t.ID, now)
	if err != nil {
		h.storeError(c, err, "Care task")
		return
	}
	t.CompletedAt = &now

	resp := CompleteTaskResponse{Task: viewTask(*t, now)}
	if next != nil {
		v := viewTask(*next, now)
		resp.Next = &v
	}
	utils.Success(c, "Care task completed", resp)
}
