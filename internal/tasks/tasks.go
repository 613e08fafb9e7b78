package tasks

import (
	"github.com/desertthunder/spindle/internal/services"
)

// ExportEngine runs playlist exports and cache syncs against a music service.
type ExportEngine struct {
	service services.Service
}

// NewExportEngine creates an ExportEngine backed by the given service.
func NewExportEngine(service services.Service) *ExportEngine {
	return &ExportEngine{service: service}
}

// sendProgress reports an update without blocking; a full channel drops the
// update. The caller owns the channel and must not close it until the engine
// method that was handed it has returned.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
