package invoices

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/solardesk/solar-crm-backend/internal/auth"
	"github.com/solardesk/solar-crm-backend/internal/pipeline"
	"github.com/solardesk/solar-crm-backend/internal/projects"
)

type Handler struct {
	store    Store
	projects *projects.Service
}

func Register(rg *gin.RouterGroup, store Store, projectSvc *projects.Service) {
	h := &Handler{store: store, projects: projectSvc}

	rg.GET("", h.list)
	rg.GET("/:id", h.get)

	admin := rg.Group("")
	admin.Use(auth.RequireRole(pipeline.RoleCompany))
	admin.POST("", h.create)
	admin.POST("/:id/status", h.setStatus)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "invoice not found"})
	case errors.Is(err, projects.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

type createReq struct {
	ProjectID string     `json:"project_id"`
	Milestone string     `json:"milestone"`
	DueDate   *time.Time `json:"due_date"`
}

// create issues an invoice for a project milestone. The amount is derived
// from the project value using the 70/30 payment split.
func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ProjectID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if !ValidMilestone(req.Milestone) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown milestone"})
		return
	}

	p, err := h.projects.Get(c.Request.Context(), req.ProjectID)
	if err != nil {
		writeError(c, err)
		return
	}

	inv, err := h.store.Create(c.Request.Context(), Invoice{
		ProjectID: p.ID,
		Milestone: req.Milestone,
		Amount:    AmountFor(req.Milestone, p.Value),
		Status:    StatusDraft,
		DueDate:   req.DueDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "invoice": inv})
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		Status:    c.Query("status"),
		ProjectID: c.Query("project_id"),
	}
	if f.Status != "" && !ValidStatus(f.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid status filter"})
		return
	}

	items, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "invoices": items})
}

func (h *Handler) get(c *gin.Context) {
	inv, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "invoice": inv})
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *Handler) setStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil || !ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid status"})
		return
	}

	var paidAt *time.Time
	if req.Status == StatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}

	inv, err := h.store.SetStatus(c.Request.Context(), c.Param("id"), req.Status, paidAt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "invoice": inv})
}
