package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fisiocal/config"
	"fisiocal/internal/service"
	"fisiocal/internal/transport/websocket"
	"fisiocal/pkg/metrics"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
	hub      *websocket.Hub
	metrics  *metrics.SchedulingMetrics
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config, hub *websocket.Hub, m *metrics.SchedulingMetrics) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
		hub:      hub,
		metrics:  m,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(h.loggerMiddleware())
	router.Use(h.metricsMiddleware())
	router.Use(h.errorMiddleware())
	router.Use(h.corsMiddleware())

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/ws/calendar", h.authMiddleware(), h.calendarSocket)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		patients := api.Group("/patients")
		patients.Use(h.authMiddleware())
		{
			patients.GET("/me", h.getMyPatientProfile)

			staff := patients.Group("/", h.staffMiddleware())
			{
				staff.GET("/", h.getPatients)
				staff.GET("/:id", h.getPatientByID)
				staff.POST("/", h.createPatient)
				staff.PUT("/:id", h.updatePatient)
			}

			admin := patients.Group("/", h.adminMiddleware())
			{
				admin.DELETE("/:id", h.deletePatient)
			}
		}

		therapists := api.Group("/therapists")
		therapists.Use(h.authMiddleware())
		{
			therapists.GET("/", h.getTherapists)
			therapists.GET("/:id", h.getTherapistByID)
			therapists.GET("/me", h.getMyTherapistProfile)

			admin := therapists.Group("/", h.adminMiddleware())
			{
				admin.POST("/", h.createTherapist)
				admin.PUT("/:id", h.updateTherapist)
				admin.DELETE("/:id", h.deleteTherapist)
			}
		}

		appointments := api.Group("/appointments")
		appointments.Use(h.authMiddleware())
		{
			appointments.POST("/", h.createAppointment)
			appointments.GET("/", h.getAppointments)
			appointments.GET("/:id", h.getAppointmentByID)
			appointments.PUT("/:id/reschedule", h.rescheduleAppointment)
			appointments.PUT("/:id/status", h.transitionAppointment)
			appointments.PUT("/:id/payment", h.markAppointmentPaid)
			appointments.DELETE("/:id", h.cancelAppointment)
			appointments.DELETE("/:id/purge", h.adminMiddleware(), h.deleteAppointment)
		}

		series := api.Group("/series")
		series.Use(h.authMiddleware(), h.staffMiddleware())
		{
			series.POST("/", h.createSeries)
			series.GET("/", h.getSeries)
			series.GET("/:id", h.getSeriesByID)
			series.DELETE("/:id", h.deleteSeriesFromDate)
			series.PUT("/:id/deactivate", h.deactivateSeries)
			series.DELETE("/occurrences/:id", h.deleteOccurrence)
		}

		cal := api.Group("/calendar")
		cal.Use(h.authMiddleware())
		{
			cal.GET("/view", h.calendarView)
			cal.POST("/navigate", h.calendarNavigate)
			cal.GET("/export.ics", h.exportCalendar)
			cal.POST("/export/archive", h.staffMiddleware(), h.archiveCalendarExport)
		}
	}
}

func (h *Handler) calendarSocket(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		unauthorizedResponse(c)
		return
	}

	h.hub.HandleConnection(c, actor)
}
