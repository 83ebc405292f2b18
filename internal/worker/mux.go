package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

// Mux routes queued task types to their handlers. The service binary
// registers one handler per task type before starting the asynq server.
type Mux struct{ mux *asynq.ServeMux }

func NewMux() *Mux { return &Mux{mux: asynq.NewServeMux()} }

// HandleFunc registers the handler for one task type, e.g. the import
// service's HandleImportTask for "import:scrape".
func (m *Mux) HandleFunc(taskType string, h func(ctx context.Context, task *asynq.Task) error) {
	m.mux.HandleFunc(taskType, h)
}

func (m *Mux) Mux() *asynq.ServeMux { return m.mux }
