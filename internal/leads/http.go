package leads

import (
	"errors"
	"net/http"
	"strings"

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

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.POST("/:id/convert", auth.RequireRole(pipeline.RoleCompany, pipeline.RoleAgent), h.convert)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "lead not found"})
	case errors.Is(err, ErrAlreadyConverted):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "lead already converted"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

type createReq struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Location       string  `json:"location"`
	EstimatedValue float64 `json:"estimated_value"`
	Notes          string  `json:"notes"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	actor := auth.CurrentActor(c)
	l, err := h.store.Create(c.Request.Context(), Lead{
		Name:           strings.TrimSpace(req.Name),
		Phone:          req.Phone,
		Email:          req.Email,
		Location:       req.Location,
		EstimatedValue: req.EstimatedValue,
		Status:         StatusNew,
		AssignedToID:   actor.ID,
		AssignedToName: actor.Name,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "lead": l})
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{Status: c.Query("status")}
	if f.Status != "" && !ValidStatus(f.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid status filter"})
		return
	}

	// Non-admin roles only see their own leads.
	actor := auth.CurrentActor(c)
	if actor.Role != pipeline.RoleCompany {
		f.AssignedToID = actor.ID
	}

	items, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "leads": items})
}

func (h *Handler) get(c *gin.Context) {
	l, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "lead": l})
}

type updateReq struct {
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
	AssignedToID   *string `json:"assigned_to_id"`
	AssignedToName *string `json:"assigned_to_name"`
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

	l, err := h.store.Update(c.Request.Context(), c.Param("id"), Update{
		Status:         req.Status,
		Notes:          req.Notes,
		AssignedToID:   req.AssignedToID,
		AssignedToName: req.AssignedToName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "lead": l})
}

// convert turns a qualified lead into a project. The creation flow is
// decided by the converting actor's role, so an agent conversion enters the
// agent pathway and an admin conversion the admin-direct one.
func (h *Handler) convert(c *gin.Context) {
	l, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if l.Status == StatusConverted {
		writeError(c, ErrAlreadyConverted)
		return
	}

	actor := auth.CurrentActor(c)
	p, err := h.projects.Create(c.Request.Context(), actor, pipeline.Draft{
		Title:       "Solar installation for " + l.Name,
		Description: l.Notes,
		Location:    l.Location,
		Value:       l.EstimatedValue,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	converted, err := h.store.MarkConverted(c.Request.Context(), l.ID, p.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "lead": converted, "project": p})
}
