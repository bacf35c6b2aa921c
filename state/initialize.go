package state

import (
	"time"

	"github.com/google/uuid"

	"figuremark/config"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	id, err := uuid.NewV7()
	if err != nil {
		// time based generation only fails when random source is broken
		id = uuid.New()
	}
	return &LocalEnv{
		RunID:  id,
		Format: config.OutputFmtMarkdown,
		start:  time.Now(),
	}
}
