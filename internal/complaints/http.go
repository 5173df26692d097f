package complaints

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solardesk/solar-crm-backend/internal/auth"
	"github.com/solardesk/solar-crm-backend/internal/pipeline"
)

type Handler struct {
	store Store
}

func Register(rg *gin.RouterGroup, store Store) {
	h := &Handler{store: store}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", auth.RequireRole(pipeline.RoleCompany, pipeline.RoleTechnician), h.update)
	rg.POST("/:id/assign", auth.RequireRole(pipeline.RoleCompany), h.assign)
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "complaint not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
}

type createReq struct {
	ProjectID    string `json:"project_id"`
	CustomerName string `json:"customer_name"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Priority     string `json:"priority"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(priority) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid priority"})
		return
	}

	cm, err := h.store.Create(c.Request.Context(), Complaint{
		ProjectID:    req.ProjectID,
		CustomerName: req.CustomerName,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       StatusOpen,
		Priority:     priority,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "complaint": cm})
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		ProjectID: c.Query("project_id"),
	}

	// Technicians only see tickets assigned to them.
	actor := auth.CurrentActor(c)
	if actor.Role == pipeline.RoleTechnician {
		f.TechnicianID = actor.ID
	}

	items, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "complaints": items})
}

func (h *Handler) get(c *gin.Context) {
	cm, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "complaint": cm})
}

type updateReq struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	Resolution *string `json:"resolution"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if req.Status != nil && !ValidStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid status"})
		return
	}
	if req.Priority != nil && !ValidPriority(*req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid priority"})
		return
	}

	cm, err := h.store.Update(c.Request.Context(), c.Param("id"), Update{
		Status:     req.Status,
		Priority:   req.Priority,
		Resolution: req.Resolution,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "complaint": cm})
}

type assignReq struct {
	TechnicianID   string `json:"technician_id"`
	TechnicianName string `json:"technician_name"`
}

func (h *Handler) assign(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.TechnicianID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	status := StatusInProgress
	cm, err := h.store.Update(c.Request.Context(), c.Param("id"), Update{
		Status:         &status,
		TechnicianID:   &req.TechnicianID,
		TechnicianName: &req.TechnicianName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "complaint": cm})
}
