package bootstrap

import (
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/solardesk/solar-crm-backend/internal/api/http"
	"github.com/solardesk/solar-crm-backend/internal/api/http/middleware"
	"github.com/solardesk/solar-crm-backend/internal/auth"
	"github.com/solardesk/solar-crm-backend/internal/complaints"
	"github.com/solardesk/solar-crm-backend/internal/inventory"
	"github.com/solardesk/solar-crm-backend/internal/invoices"
	"github.com/solardesk/solar-crm-backend/internal/leads"
	"github.com/solardesk/solar-crm-backend/internal/pipeline"
	"github.com/solardesk/solar-crm-backend/internal/projects"
	"github.com/solardesk/solar-crm-backend/internal/users"
)

type Stores struct {
	Users      users.Store
	Projects   projects.Store
	Inventory  inventory.Store
	Leads      leads.Store
	Complaints complaints.Store
	Invoices   invoices.Store
}

type RouterDeps struct {
	ServiceName string
	Version     string
	Mode        string

	// DB is nil in demo mode; health reports it as disabled.
	DB *pgxpool.Pool

	// AuthClient is nil when Firebase is not configured; identity then comes
	// from request headers (demo/development only).
	AuthClient *fbauth.Client

	Stores Stores
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders,
		"Authorization", "X-Request-Id", "X-User-Id", "X-User-Email", "X-User-Name")
	r.Use(cors.New(corsCfg))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RateLimitMiddleware(20, 40))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Mode, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	if dep.AuthClient != nil {
		api.Use(auth.FirebaseAuthMiddleware(dep.AuthClient))
	} else {
		api.Use(auth.HeaderIdentity())
	}
	api.Use(auth.WithUser(dep.Stores.Users))

	users.Register(api.Group("/users"), dep.Stores.Users,
		auth.RequireRole(pipeline.RoleCompany), auth.UserDBID)

	projectSvc := projects.NewService(dep.Stores.Projects)

	// Everything past onboarding requires an approved account.
	approved := api.Group("")
	approved.Use(auth.RequireApproved())

	projects.Register(approved.Group("/projects"), projectSvc)
	inventory.Register(approved.Group("/inventory"), dep.Stores.Inventory, projectSvc)
	leads.Register(approved.Group("/leads"), dep.Stores.Leads, projectSvc)
	complaints.Register(approved.Group("/complaints"), dep.Stores.Complaints)
	invoices.Register(approved.Group("/invoices"), dep.Stores.Invoices, projectSvc)

	return r
}
