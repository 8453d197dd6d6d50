package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskmaster/internal/middleware"
	"taskmaster/internal/models"
	"taskmaster/internal/pdf"
	"taskmaster/internal/services"
)

type TaskHandler struct {
	service  services.TaskService
	exporter pdf.TaskListGenerator
}

func NewTaskHandler(service services.TaskService, exporter pdf.TaskListGenerator) *TaskHandler {
	return &TaskHandler{service: service, exporter: exporter}
}

// @Summary      Create task
// @Description  Creates a task owned by the caller; new tasks start as todo
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
		DueDate     string   `json:"due_date"` // RFC3339
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var due *time.Time
	if req.DueDate != "" {
		t, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			log.Printf("[task][create][err] invalid due_date=%q: %v", req.DueDate, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date (RFC3339)"})
			return
		}
		due = &t
	}

	task, err := h.service.Create(c.Request.Context(), ownerID, services.TaskCreate{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		DueDate:     due,
	})
	if err != nil {
		log.Printf("[task][create][err] owner=%d: %v", ownerID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][create][ok] id=%d owner=%d title=%q", task.ID, ownerID, task.Title)
	c.JSON(http.StatusCreated, task)
}

// GET /tasks?archived=false
func (h *TaskHandler) List(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	archived := false
	if v, ok := c.GetQuery("archived"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid archived flag"})
			return
		}
		archived = b
	}

	tasks, err := h.service.List(c.Request.Context(), ownerID, archived)
	if err != nil {
		log.Printf("[task][list][err] owner=%d: %v", ownerID, err)
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	task, err := h.service.GetByID(c.Request.Context(), ownerID, id)
	if err != nil {
		log.Printf("[task][get][err] id=%d owner=%d: %v", id, ownerID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Update task
// @Description  Merge-patch: only supplied fields are applied; setting status to done stamps completed_at
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		Status      *models.TaskStatus `json:"status"`
		Done        *bool              `json:"done"`
		Archived    *bool              `json:"archived"`
		DueDate     *string            `json:"due_date"` // RFC3339; empty string clears
		Tags        *[]string          `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Done:        req.Done,
		Archived:    req.Archived,
	}
	if req.DueDate != nil {
		patch.DueDateSet = true
		if *req.DueDate != "" {
			t, err := time.Parse(time.RFC3339, *req.DueDate)
			if err != nil {
				log.Printf("[task][update][err] invalid due_date=%q: %v", *req.DueDate, err)
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date (RFC3339)"})
				return
			}
			patch.DueDate = &t
		}
	}
	if req.Tags != nil {
		patch.TagsSet = true
		patch.Tags = *req.Tags
	}

	task, err := h.service.Update(c.Request.Context(), ownerID, id, patch)
	if err != nil {
		log.Printf("[task][update][err] id=%d owner=%d: %v", id, ownerID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][update][ok] id=%d owner=%d status=%q", id, ownerID, task.Status)
	c.JSON(http.StatusOK, task)
}

// POST /tasks/:id/archive { "archived": true }
// Absent body or field defaults to archiving.
func (h *TaskHandler) Archive(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Archived *bool `json:"archived"`
	}
	_ = c.ShouldBindJSON(&req)
	archived := true
	if req.Archived != nil {
		archived = *req.Archived
	}

	task, err := h.service.Archive(c.Request.Context(), ownerID, id, archived)
	if err != nil {
		log.Printf("[task][archive][err] id=%d owner=%d: %v", id, ownerID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][archive][ok] id=%d owner=%d archived=%v", id, ownerID, archived)
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id responds with the removed task.
func (h *TaskHandler) Delete(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	task, err := h.service.Delete(c.Request.Context(), ownerID, id)
	if err != nil {
		log.Printf("[task][delete][err] id=%d owner=%d: %v", id, ownerID, err)
		respondError(c, err)
		return
	}
	log.Printf("[task][delete][ok] id=%d owner=%d", id, ownerID)
	c.JSON(http.StatusOK, task)
}

// @Summary      Search tasks
// @Description  Filters compose with AND; an empty request returns all of the caller's tasks
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Task
// @Failure      400  {object}  map[string]string
// @Router       /tasks/search [post]
func (h *TaskHandler) Search(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Query       string             `json:"query"`
		Status      *models.TaskStatus `json:"status"`
		Archived    *bool              `json:"archived"`
		DueDateFrom *string            `json:"due_date_from"` // RFC3339
		DueDateTo   *string            `json:"due_date_to"`   // RFC3339
		Tags        []string           `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][search][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := models.TaskFilter{
		Query:    req.Query,
		Status:   req.Status,
		Archived: req.Archived,
		Tags:     req.Tags,
	}
	if req.DueDateFrom != nil && *req.DueDateFrom != "" {
		t, err := time.Parse(time.RFC3339, *req.DueDateFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date_from (RFC3339)"})
			return
		}
		filter.DueDateFrom = &t
	}
	if req.DueDateTo != nil && *req.DueDateTo != "" {
		t, err := time.Parse(time.RFC3339, *req.DueDateTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date_to (RFC3339)"})
			return
		}
		filter.DueDateTo = &t
	}

	tasks, err := h.service.Search(c.Request.Context(), ownerID, filter)
	if err != nil {
		log.Printf("[task][search][err] owner=%d: %v", ownerID, err)
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	log.Printf("[task][search][ok] owner=%d count=%d", ownerID, len(tasks))
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/export/pdf returns the current (non-archived) task list as a PDF download.
func (h *TaskHandler) ExportPDF(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tasks, err := h.service.List(c.Request.Context(), ownerID, false)
	if err != nil {
		log.Printf("[task][export][err] owner=%d: %v", ownerID, err)
		respondError(c, err)
		return
	}

	username, _ := c.Get(middleware.CtxUsername)
	name, _ := username.(string)

	data, err := h.exporter.Generate(name, tasks)
	if err != nil {
		log.Printf("[task][export][err] render owner=%d: %v", ownerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render pdf"})
		return
	}
	log.Printf("[task][export][ok] owner=%d tasks=%d bytes=%d", ownerID, len(tasks), len(data))

	c.Header("Content-Disposition", `attachment; filename="tasks.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
