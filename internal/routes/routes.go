package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carecircle-server/internal/handlers"
	"carecircle-server/internal/middleware"
	"carecircle-server/internal/utils"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, env *handlers.Env, db handlers.Pinger, gatherer prometheus.Gatherer) {
	utils.RegisterValidators()

	authHandler := handlers.NewAuthHandler(env)
	patientHandler := handlers.NewPatientHandler(env)
	symptomHandler := handlers.NewSymptomHandler(env)
	medicineHandler := handlers.NewMedicineHandler(env)
	reminderHandler := handlers.NewReminderHandler(env)
	taskHandler := handlers.NewTaskHandler(env)
	referralHandler := handlers.NewReferralHandler(env)
	dashboardHandler := handlers.NewDashboardHandler(env)
	reportHandler := handlers.NewReportHandler(env)
	syncHandler := handlers.NewSyncHandler(env)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(env.Cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		patientRoutes := private.Group("/patients")
		{
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.GET("", patientHandler.GetPatients)
			patientRoutes.GET("/:patientId", patientHandler.GetPatientByID)
			patientRoutes.POST("/:patientId/caregivers", patientHandler.AddCaregiver)
		}

		symptomRoutes := private.Group("/symptoms")
		{
			symptomRoutes.POST("", symptomHandler.CreateSymptom)
			symptomRoutes.GET("/patient/:patientId", symptomHandler.GetSymptomsForPatient)
			symptomRoutes.GET("/:id", symptomHandler.GetSymptomByID)
		}

		// Stateless classification, nothing is stored
		private.POST("/triage", symptomHandler.Evaluate)

		medicineRoutes := private.Group("/medicines")
		{
			medicineRoutes.POST("", medicineHandler.CreateMedicine)
			medicineRoutes.POST("/log", medicineHandler.LogMedicine)
			medicineRoutes.GET("/patient/:patientId", medicineHandler.GetMedicinesForPatient)
			medicineRoutes.GET("/:id", medicineHandler.GetMedicineByID)
		}

		reminderRoutes := private.Group("/reminders")
		{
			reminderRoutes.POST("", reminderHandler.CreateReminder)
			reminderRoutes.GET("/patient/:patientId", reminderHandler.GetRemindersForPatient)
			reminderRoutes.PATCH("/:id/active", reminderHandler.SetReminderActive)
		}

		taskRoutes := private.Group("/tasks")
		{
			taskRoutes.POST("", taskHandler.CreateTask)
			taskRoutes.GET("/patient/:patientId", taskHandler.GetTasksForPatient)
			taskRoutes.PATCH("/:id/complete", taskHandler.CompleteTask)
		}

		referralRoutes := private.Group("/referral")
		{
			referralRoutes.POST("/advice", referralHandler.Advice)
			referralRoutes.GET("/facility", referralHandler.Facility)
		}

		private.GET("/dashboard/:patientId", dashboardHandler.GetDashboard)
		private.GET("/reports/:patientId", reportHandler.GetReport)
		private.POST("/sync", syncHandler.Sync)
	}

	router.GET("/health", handlers.Health(db))
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
