package inventory

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solardesk/solar-crm-backend/internal/auth"
	"github.com/solardesk/solar-crm-backend/internal/pipeline"
	"github.com/solardesk/solar-crm-backend/internal/projects"
)

// Handler exposes serial-number tracking. Assignment keeps the project
// aggregate's serial list in sync through the projects service.
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
	admin.POST("/:id/assign", h.assign)
	admin.POST("/:id/unassign", h.unassign)
	admin.POST("/:id/status", h.setStatus)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "inventory item not found"})
	case errors.Is(err, ErrDuplicateSerial):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "serial number already registered"})
	case errors.Is(err, projects.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

type createReq struct {
	SerialNumber string `json:"serial_number"`
	ItemType     string `json:"item_type"`
	Notes        string `json:"notes"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SerialNumber) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if !ValidType(req.ItemType) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown item type"})
		return
	}

	it, err := h.store.Create(c.Request.Context(), Item{
		SerialNumber: strings.TrimSpace(req.SerialNumber),
		ItemType:     req.ItemType,
		Status:       StatusAvailable,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": it})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.store.List(c.Request.Context(), Filter{
		Status:    c.Query("status"),
		ItemType:  c.Query("type"),
		ProjectID: c.Query("project_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
}

func (h *Handler) get(c *gin.Context) {
	it, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": it})
}

type assignReq struct {
	ProjectID string `json:"project_id"`
}

func (h *Handler) assign(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ProjectID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	it, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if it.Status != StatusAvailable {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "item is not available"})
		return
	}

	if _, err := h.projects.AttachSerial(c.Request.Context(), req.ProjectID, it.SerialNumber); err != nil {
		writeError(c, err)
		return
	}

	updated, err := h.store.SetAssignment(c.Request.Context(), it.ID, StatusAssigned, req.ProjectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": updated})
}

func (h *Handler) unassign(c *gin.Context) {
	it, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if it.ProjectID == "" {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "item is not assigned"})
		return
	}

	if _, err := h.projects.DetachSerial(c.Request.Context(), it.ProjectID, it.SerialNumber); err != nil && !errors.Is(err, projects.ErrNotFound) {
		writeError(c, err)
		return
	}

	updated, err := h.store.SetAssignment(c.Request.Context(), it.ID, StatusAvailable, "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": updated})
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

	updated, err := h.store.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": updated})
}
