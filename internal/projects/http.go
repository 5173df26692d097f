package projects

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solardesk/solar-crm-backend/internal/auth"
	"github.com/solardesk/solar-crm-backend/internal/pipeline"
)

type Handler struct {
	svc *Service
}

func Register(rg *gin.RouterGroup, svc *Service) {
	h := &Handler{svc: svc}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/stages", h.stages)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", auth.RequireRole(pipeline.RoleCompany), h.delete)

	rg.POST("/:id/stage", h.setStage)
	rg.POST("/:id/complete-installation", auth.RequireRole(pipeline.RoleInstaller, pipeline.RoleCompany), h.completeInstallation)
	rg.POST("/:id/assign-installer", auth.RequireRole(pipeline.RoleCompany), h.assignInstaller)
	rg.POST("/:id/assign-agent", auth.RequireRole(pipeline.RoleCompany), h.assignAgent)
	rg.POST("/:id/agent-review", auth.RequireRole(pipeline.RoleAgent, pipeline.RoleCompany), h.agentReview)
	rg.POST("/:id/admin-review", auth.RequireRole(pipeline.RoleCompany), h.adminReview)
}

// writeError maps engine and store errors onto HTTP statuses. Forbidden
// transitions are user-visible rejections naming the attempted stage, never
// silent drops.
func writeError(c *gin.Context, err error) {
	var forbidden *pipeline.ForbiddenError
	switch {
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"ok":    false,
			"error": err.Error(),
			"stage": string(forbidden.Target),
		})
	case errors.Is(err, pipeline.ErrInvalidReviewState):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "project was modified concurrently, retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

type createReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Value       float64 `json:"value"`
	Status      string  `json:"status"`
	Stage       string  `json:"pipeline_stage"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if req.Value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "value must be non-negative"})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), auth.CurrentActor(c), pipeline.Draft{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		Value:       req.Value,
		Status:      pipeline.Status(req.Status),
		Stage:       pipeline.Stage(req.Stage),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		Status:     pipeline.Status(c.Query("status")),
		Stage:      pipeline.Stage(c.Query("stage")),
		SourceFlow: pipeline.SourceFlow(c.Query("source_flow")),
		ActorID:    c.Query("actor_id"),
	}

	// Non-admin roles only see projects they are attached to.
	actor := auth.CurrentActor(c)
	if actor.Role != pipeline.RoleCompany {
		f.ActorID = actor.ID
	}

	items, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

// stages exposes the stage registry for populating selection UIs, together
// with the caller's allowed set.
func (h *Handler) stages(c *gin.Context) {
	actor := auth.CurrentActor(c)
	allowed := pipeline.AllowedStages(actor.Role)

	type stageView struct {
		Key     string       `json:"key"`
		Label   string       `json:"label"`
		Tag     pipeline.Tag `json:"tag"`
		Allowed bool         `json:"allowed"`
	}

	out := make([]stageView, 0, len(pipeline.AllStages()))
	for _, s := range pipeline.AllStages() {
		_, ok := allowed[s]
		out = append(out, stageView{
			Key:     string(s),
			Label:   pipeline.LabelFor(s),
			Tag:     pipeline.TagFor(s),
			Allowed: ok,
		})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stages": out})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

type updateReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	Value       *float64 `json:"value"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.UpdateDetails(c.Request.Context(), c.Param("id"), UpdateDetails{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Value:       req.Value,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type setStageReq struct {
	Stage   string `json:"stage"`
	Comment string `json:"comment"`
}

func (h *Handler) setStage(c *gin.Context) {
	var req setStageReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Stage) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.SetStage(c.Request.Context(), auth.CurrentActor(c), c.Param("id"),
		pipeline.Stage(req.Stage), req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

type completeInstallationReq struct {
	Notes string `json:"notes"`
}

func (h *Handler) completeInstallation(c *gin.Context) {
	var req completeInstallationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	actor := auth.CurrentActor(c)
	id := c.Param("id")

	// The engine does not verify assignment; that enforcement lives here.
	if actor.Role == pipeline.RoleInstaller {
		current, err := h.svc.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if current.Installer.ID != actor.ID {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "not the assigned installer"})
			return
		}
	}

	p, err := h.svc.CompleteInstallation(c.Request.Context(), actor, id, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

type assignReq struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) assignInstaller(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.AssignInstaller(c.Request.Context(), auth.CurrentActor(c), c.Param("id"),
		pipeline.ActorRef{ID: req.ID, Name: req.Name})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) assignAgent(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.AssignAgent(c.Request.Context(), auth.CurrentActor(c), c.Param("id"),
		pipeline.ActorRef{ID: req.ID, Name: req.Name})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

type reviewReq struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment"`
}

func (h *Handler) agentReview(c *gin.Context) {
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.AgentReview(c.Request.Context(), auth.CurrentActor(c), c.Param("id"), req.Approve, req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) adminReview(c *gin.Context) {
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.svc.AdminReview(c.Request.Context(), auth.CurrentActor(c), c.Param("id"), req.Approve, req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}
