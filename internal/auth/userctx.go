package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solardesk/solar-crm-backend/internal/pipeline"
	"github.com/solardesk/solar-crm-backend/internal/users"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxDisplayName = "display_name"
	CtxUserDBID    = "user_db_id"
	CtxUserRole    = "user_role"
	CtxUserName    = "user_name"
	CtxApproval    = "user_approval"
)

// WithUser upserts the authenticated identity into the user store and loads
// the application-level role and approval state into the context. It must
// run after an identity middleware has set the firebase uid.
func WithUser(store users.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := strings.TrimSpace(c.GetString(CtxFirebaseUID))
		if fuid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthenticated"})
			c.Abort()
			return
		}

		u, err := store.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: fuid,
			Email:       c.GetString(CtxEmail),
			DisplayName: c.GetString(CtxDisplayName),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(CtxUserDBID, u.ID)
		c.Set(CtxUserRole, u.Role)
		c.Set(CtxUserName, u.DisplayName)
		c.Set(CtxApproval, u.ApprovalStatus)
		c.Next()
	}
}

// UserDBID returns the database id of the authenticated user.
func UserDBID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserDBID))
}

// CurrentActor builds the engine-facing actor from the request context.
// Unknown roles are logged as a data-quality signal; the permission table
// treats them as having no grants.
func CurrentActor(c *gin.Context) pipeline.Actor {
	role := pipeline.ParseRole(c.GetString(CtxUserRole))
	if !pipeline.KnownRole(role) && role != "" {
		log.Printf("auth: unrecognised role %q for user %s", role, UserDBID(c))
	}
	return pipeline.Actor{
		ID:   UserDBID(c),
		Name: c.GetString(CtxUserName),
		Role: role,
	}
}

// RequireRole aborts with 403 unless the caller holds one of the given roles.
func RequireRole(roles ...pipeline.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := pipeline.ParseRole(c.GetString(CtxUserRole))
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "insufficient role"})
		c.Abort()
	}
}

// RequireApproved aborts with 403 for users still pending (or rejected in)
// the onboarding approval workflow.
func RequireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxApproval) != users.ApprovalApproved {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "account not approved"})
			c.Abort()
			return
		}
		c.Next()
	}
}
