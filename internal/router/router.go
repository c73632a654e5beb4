package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/handler"
	"github.com/noah-isme/complaint-desk-api/internal/middleware"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	"github.com/noah-isme/complaint-desk-api/internal/service"
	"github.com/noah-isme/complaint-desk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/complaint-desk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/complaint-desk-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Complaints  *handler.ComplaintHandler
	Admin       *handler.AdminHandler
	Officer     *handler.OfficerHandler
	Messages    *handler.MessageHandler
	Reports     *handler.ReportHandler
	Attachments *handler.AttachmentHandler
	Metrics     *handler.MetricsHandler
}

// Options carries the cross-cutting dependencies of the route table.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	EnableMetrics  bool
	Tokens         middleware.TokenValidator
	Audit          middleware.AuditRecorder
	MetricsService *service.MetricsService
	Logger         *zap.Logger
}

// New builds the gin engine with every route registered.
func New(h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	if opts.EnableMetrics {
		r.Use(middleware.Metrics(opts.MetricsService))
	}
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if opts.EnableMetrics {
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := middleware.JWT(opts.Tokens)
	staff := []models.UserRole{models.RoleOfficer, models.RoleAdmin}

	api := r.Group(opts.APIPrefix)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/register", h.Auth.Register)

	api.GET("/attachments/:token", h.Attachments.Download)

	complaints := api.Group("/complaints")
	complaints.POST("/submit", middleware.OptionalJWT(opts.Tokens), h.Complaints.Submit)
	complaints.Use(auth)
	complaints.GET("/user/:userId", middleware.RBAC(staff, "userId"), h.Complaints.ListByUser)
	complaints.GET("/:id", h.Complaints.Get)
	complaints.PUT("/:id", h.Complaints.Update)
	complaints.PUT("/:id/withdraw", h.Complaints.Withdraw)
	complaints.GET("/:id/attachments", h.Complaints.Attachments)

	messages := api.Group("/messages", auth)
	messages.GET("/complaint/:id/public", h.Messages.Public)
	messages.GET("/complaint/:id/private", middleware.RBAC(staff), h.Messages.Private)
	messages.GET("/complaint/:id/user/:userId", h.Messages.ForUser)
	messages.POST("/send", h.Messages.Send)

	users := api.Group("/users", auth)
	users.GET("/officers", h.Users.ListOfficers)
	users.POST("/reset-password", h.Auth.ResetPassword)
	users.GET("/:id", h.Users.Get)

	admin := api.Group("/admin", auth, middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/complaints", h.Admin.ListComplaints)
	admin.GET("/complaints/stats", h.Admin.Stats)
	admin.GET("/complaints/escalated", h.Admin.Escalated)
	admin.PUT("/complaints/:id/assign", h.Admin.Assign)
	admin.PUT("/complaints/:id/status", h.Admin.SetStatus)
	admin.PUT("/complaints/:id/resolve", h.Admin.Resolve)
	admin.GET("/officers", h.Users.ListOfficers)
	admin.GET("/reports/generate",
		middleware.Audit(opts.Audit, opts.Logger, models.AuditActionReportGenerate, "report"),
		h.Reports.Generate)

	officer := api.Group("/officer", auth)
	officer.GET("/complaints/:officerId", middleware.RBAC([]models.UserRole{models.RoleAdmin}, "officerId"), h.Officer.Complaints)
	officer.GET("/stats/:officerId", middleware.RBAC([]models.UserRole{models.RoleAdmin}, "officerId"), h.Officer.Stats)
	officer.PUT("/complaints/:id/status", middleware.RequireRoles(models.RoleOfficer, models.RoleAdmin), h.Officer.SetStatus)

	return r
}
