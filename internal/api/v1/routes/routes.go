package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lyre-server/internal/api/v1/handlers"
	"lyre-server/internal/app/jobs"
	"lyre-server/internal/app/repository"
	"lyre-server/internal/app/storage"
)

// Deps bundles everything the API routes need.
type Deps struct {
	Store       repository.Store
	ObjectStore storage.ObjectStore
	JobService  *jobs.Service
	Manager     *jobs.Manager
	Hub         *jobs.Hub
	Logger      *zap.Logger
}

// Register wires all /api routes onto the group.
func Register(api *gin.RouterGroup, deps Deps) {
	uploadHandler := handlers.NewUploadHandler(deps.ObjectStore)
	recordingHandler := handlers.NewRecordingHandler(
		deps.Store.Recordings(), deps.Store.Transcriptions(), deps.ObjectStore, deps.Logger)
	jobHandler := handlers.NewJobHandler(deps.JobService, deps.Manager)
	eventsHandler := handlers.NewEventsHandler(deps.Hub, deps.Manager, deps.Logger)
	folderHandler := handlers.NewFolderHandler(deps.Store.Folders())
	tagHandler := handlers.NewTagHandler(deps.Store.Tags())
	settingsHandler := handlers.NewSettingsHandler(deps.Store.Settings())

	api.POST("/upload/presign", uploadHandler.Presign)

	recordings := api.Group("/recordings")
	{
		recordings.POST("", recordingHandler.Create)
		recordings.GET("", recordingHandler.List)
		recordings.GET("/:id", recordingHandler.Get)
		recordings.PATCH("/:id", recordingHandler.Update)
		recordings.DELETE("/:id", recordingHandler.Delete)
		recordings.GET("/:id/transcription", recordingHandler.GetTranscription)
		recordings.GET("/:id/export", recordingHandler.Export)
		recordings.POST("/:id/transcribe", jobHandler.Transcribe)
	}

	jobsGroup := api.Group("/jobs")
	{
		jobsGroup.GET("/:id", jobHandler.Get)
		jobsGroup.POST("/:id/poll", jobHandler.Poll)
	}

	api.GET("/events", eventsHandler.Stream)

	folders := api.Group("/folders")
	{
		folders.GET("", folderHandler.List)
		folders.POST("", folderHandler.Create)
		folders.PATCH("/:id", folderHandler.Update)
		folders.DELETE("/:id", folderHandler.Delete)
	}

	tags := api.Group("/tags")
	{
		tags.GET("", tagHandler.List)
		tags.POST("", tagHandler.Create)
		tags.PATCH("/:id", tagHandler.Update)
		tags.DELETE("/:id", tagHandler.Delete)
	}

	api.GET("/settings", settingsHandler.Get)
	api.PUT("/settings", settingsHandler.Update)
}
