package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solardesk/solar-crm-backend/internal/pipeline"
)

type Handler struct {
	store Store
}

// Register wires the user onboarding/approval routes. Admin-only routes are
// guarded by the caller-provided middleware so this package does not import
// the auth package (auth already depends on users).
func Register(rg *gin.RouterGroup, store Store, adminOnly gin.HandlerFunc, userID func(*gin.Context) string) {
	h := &Handler{store: store}

	rg.GET("/me", h.me(userID))

	admin := rg.Group("")
	admin.Use(adminOnly)
	admin.GET("", h.list)
	admin.POST("/:id/approve", h.setApproval(ApprovalApproved))
	admin.POST("/:id/reject", h.setApproval(ApprovalRejected))
	admin.POST("/:id/role", h.setRole)
}

func (h *Handler) me(userID func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := h.store.GetByID(c.Request.Context(), userID(c))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
	}
}

func (h *Handler) list(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", ApprovalPending, ApprovalApproved, ApprovalRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid status filter"})
		return
	}

	items, err := h.store.List(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "users": items})
}

func (h *Handler) setApproval(status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := h.store.SetApproval(c.Request.Context(), c.Param("id"), status)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
	}
}

type setRoleReq struct {
	Role string `json:"role"`
}

func (h *Handler) setRole(c *gin.Context) {
	var req setRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	role := pipeline.ParseRole(req.Role)
	if !pipeline.KnownRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown role"})
		return
	}

	u, err := h.store.SetRole(c.Request.Context(), c.Param("id"), string(role))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}
