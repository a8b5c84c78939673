package app

import (
	"talent_match_backend/docs"
	"talent_match_backend/internal/config"
	"talent_match_backend/internal/middleware"
	"talent_match_backend/internal/model"
	"talent_match_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerCommonRoutes(authGroup, c)
		a.registerCandidateRoutes(authGroup, c)
		a.registerEmployerRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/jobs", c.job.ListJobs)
		public.GET("/jobs/:id", c.job.GetJob)

		// 定时任务入口，凭共享密钥调用
		public.POST("/cron/interview-reminders", c.cron.InterviewReminders)
	}
}

func (a *App) registerCommonRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/me", c.auth.Me)
	group.PUT("/me", c.user.UpdateProfile)

	group.PUT("/applications/:id/status", c.application.UpdateStatus)
	group.GET("/test-results/:id", c.test.GetResult)

	group.GET("/interviews", c.interview.ListMine)
	group.GET("/interviews/:id", c.interview.Get)
	group.PUT("/interviews/:id/status", c.interview.UpdateStatus)

	group.GET("/notifications", c.notification.List)
	group.POST("/notifications/:id/read", c.notification.MarkRead)
}

func (a *App) registerCandidateRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/jobs/:id/apply", middleware.RoleMiddleware(model.Candidate), c.application.Apply)

	candidate := group.Group("/candidate")
	candidate.Use(middleware.RoleMiddleware(model.Candidate))
	{
		candidate.POST("/resume", c.user.UploadResume)
		candidate.GET("/applications", c.application.ListMine)
		candidate.GET("/tests", c.test.ListEligible)
		candidate.GET("/tests/:id", c.test.GetCandidateTest)
		candidate.POST("/tests/:id/submit", c.test.SubmitTest)
		candidate.GET("/test-results", c.test.GetMyResults)
	}
}

func (a *App) registerEmployerRoutes(group *gin.RouterGroup, c *controllers) {
	employer := group.Group("/employer")
	employer.Use(middleware.RoleMiddleware(model.Employer))
	{
		employer.GET("/jobs", c.job.ListMyJobs)
		employer.POST("/jobs", c.job.CreateJob)
		employer.PUT("/jobs/:id", c.job.UpdateJob)
		employer.POST("/jobs/:id/close", c.job.CloseJob)
		employer.GET("/jobs/:id/applications", c.application.ListForJob)

		employer.GET("/tests", c.test.ListTemplates)
		employer.POST("/tests", c.test.CreateTemplate)
		employer.GET("/tests/:id", c.test.GetEmployerTest)
		employer.DELETE("/tests/:id", c.test.DeactivateTest)
		employer.POST("/tests/:id/assign", c.test.AssignTest)
		employer.GET("/test-results", c.test.ListEmployerResults)

		employer.POST("/interviews", c.interview.Schedule)
		employer.POST("/interviews/:id/reschedule", c.interview.Reschedule)
	}
}
