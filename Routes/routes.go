package Routes

import (
	"MindLine/Controllers"
	"MindLine/Middleware"
	"MindLine/SSE"
	"MindLine/Whatsapp"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func ConfigRoutes(router *gin.Engine) {
	// Gzip Compression
	router.Use(gzip.Gzip(gzip.BestSpeed))

	// Public routes
	public := router.Group("/api")
	{
		public.POST("/login", Controllers.Login)
		public.POST("/register", Controllers.Register)
		public.POST("/register/PracticeGroup", Controllers.RegisterPracticeGroup)
		public.POST("/SaveFcmToken", Controllers.SaveFcmToken)
		public.POST("/JoinWaitlist", Controllers.JoinWaitlist)
		public.POST("/VerifyWaitlistPhoneNo", Controllers.VerifyWaitlistPhoneNo)
		public.POST("/GetPatientIdByPhone", Controllers.GetPatientIdByPhone)
		public.POST("/FetchAppointmentsByPatientID", Controllers.FetchAppointmentsByPatientID)
		public.GET("/GetProvidersTrimmed", Controllers.GetProvidersTrimmed)
	}

	// Authorized routes
	authorized := router.Group("/api/protected")
	authorized.Use(Middleware.JwtAuthMiddleware())
	authorized.Use(Middleware.SetPracticeGroup())
	{
		// User-related routes
		authorized.GET("/user", Controllers.CurrentUser)
		authorized.POST("/DeleteUser", Controllers.DeleteUser)

		// Waitlist-related routes
		authorized.POST("/FetchWaitlist", Controllers.FetchWaitlist)
		authorized.POST("/ExcludeWaitlistEntry", Controllers.ExcludeWaitlistEntry)
		authorized.POST("/RestoreWaitlistEntry", Controllers.RestoreWaitlistEntry)
		authorized.POST("/RaiseHand", Controllers.RaiseHand)
		authorized.POST("/SetWaitlistUrgency", Controllers.SetWaitlistUrgency)

		// Matching
		authorized.POST("/EvaluateProviderMatch", Controllers.EvaluateProviderMatch)

		// Notification dispatch routes
		authorized.POST("/StartDispatch", Controllers.StartDispatch)
		authorized.GET("/FetchDispatchStatus", Controllers.FetchDispatchStatus)
		authorized.GET("/FetchDispatchHistory", Controllers.FetchDispatchHistory)
		authorized.POST("/CancelDispatch", Controllers.CancelDispatch)
		authorized.POST("/RetryDispatch", Controllers.RetryDispatch)
		authorized.POST("/BookHeldSlot", Controllers.BookHeldSlot)

		// Appointment-related routes
		authorized.POST("/MarkAppointmentAsCompleted", Controllers.MarkAppointmentAsCompleted)
		authorized.POST("/UnmarkAppointmentAsCompleted", Controllers.UnmarkAppointmentAsCompleted)
		authorized.POST("/CancelAppointment", Controllers.CancelAppointment)

		// Provider-related routes
		authorized.POST("/GetProviderSchedule", Controllers.GetProviderSchedule)
		authorized.POST("/AddProviderSlots", Controllers.AddProviderSlots)
		authorized.GET("/GetProviders", Controllers.GetProviders)

		// Patient-related routes
		authorized.GET("/FetchPatients", Controllers.FetchPatients)
		authorized.POST("/FetchPatientFilesURLs", Controllers.FetchPatientFilesURLs)
		authorized.POST("/UploadPatientRecord", Controllers.UploadPatientRecord)
		authorized.POST("/DeletePatientRecord", Controllers.DeletePatientRecord)
		authorized.POST("/UpdatePatient", Controllers.UpdatePatient)
		authorized.POST("/CreatePatient", Controllers.CreatePatient)

		// WhatsApp-related routes
		authorized.GET("/CheckWhatsAppLogin", Whatsapp.CheckLogin)
		authorized.GET("/GetWhatsAppQRCode", Whatsapp.GetQRCode)

		// SSE (Server-Sent Events) route
		authorized.GET("/RequestSSE", SSE.RequestSSE)

		// Export-related routes
		authorized.POST("/ExportOutreachTable", Controllers.ExportOutreachTable)
	}

	// Destructive operations need elevated permission
	admin := authorized.Group("/")
	admin.Use(Middleware.PermissionCheckAdmin())
	{
		admin.POST("/RegisterProvider", Controllers.RegisterProvider)
		admin.POST("/DeleteProvider", Controllers.DeleteProvider)
		admin.POST("/DeletePatient", Controllers.DeletePatient)
	}

	// Static file serving
	authorized.Static("/PatientRecords", "./PatientRecords")
	router.Static("/Web", "./Static")
}
