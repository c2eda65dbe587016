package llm

import (
	"context"
)

// AdvisoryClient is the narrow interface the engine needs to consult an
// external model for a second diagnostic opinion. The engine must work
// without one; a nil client means "advisory source not configured".
type AdvisoryClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
