package main

import (
	"github.com/hibiken/asynq"

	mediaJob "photovault-backend/internal/domains/media/job"
	personJob "photovault-backend/internal/domains/person/job"
	storageJob "photovault-backend/internal/infrastructure/storage/job"
	"photovault-backend/internal/shared"
	"photovault-backend/pkg/container"
)

// HandlerRegistry holds every job handler the worker serves.
type HandlerRegistry struct {
	generateThumbnail *personJob.GenerateThumbnailHandler
	personCleanup     *personJob.CleanupHandler

	indexAsset *mediaJob.IndexAssetHandler
	removeFace *mediaJob.RemoveFaceHandler

	deleteFiles *storageJob.DeleteFilesHandler
}

// initializeHandlers creates all job handlers with their dependencies.
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		generateThumbnail: personJob.NewGenerateThumbnailHandler(c.ThumbnailService),
		personCleanup:     personJob.NewCleanupHandler(c.PersonService),

		indexAsset: mediaJob.NewIndexAssetHandler(c.AssetRepo, c.SearchRepo),
		removeFace: mediaJob.NewRemoveFaceHandler(c.SearchRepo),

		deleteFiles: storageJob.NewDeleteFilesHandler(c.Blob),
	}
}

// RegisterHandlers binds task types to handlers on the mux.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeGenerateFaceThumbnail, h.generateThumbnail.ProcessTask)
	mux.HandleFunc(shared.TypePersonCleanup, h.personCleanup.ProcessTask)

	mux.HandleFunc(shared.TypeSearchIndexAsset, h.indexAsset.ProcessTask)
	mux.HandleFunc(shared.TypeSearchRemoveFace, h.removeFace.ProcessTask)

	mux.HandleFunc(shared.TypeDeleteFiles, h.deleteFiles.ProcessTask)
}
