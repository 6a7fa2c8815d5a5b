package omnitok

import (
	"context"
	"fmt"
	"time"
)

// GenerationConfig holds the sampling parameters forwarded to the sequence
// model. Zero values mean the generator's own defaults.
type GenerationConfig struct {
	MaxNewTokens int
	Temperature  float64
	TopK         int
	TopP         float64
	StopTokens   []int64
}

// Generator is the sequence model boundary. Implementations take a flat
// global-id prompt and return the generated continuation, also as global ids.
// The sequence model itself lives behind this interface and is never part of
// the tokenizer.
type Generator interface {
	Generate(ctx context.Context, promptIDs []int64, cfg GenerationConfig) ([]int64, error)
}

// GenerationTimeoutError reports that the generator did not finish within the
// context deadline. No partial detokenization is attempted in this case.
type GenerationTimeoutError struct {
	Elapsed time.Duration
}

func (e *GenerationTimeoutError) Error() string {
	return fmt.Sprintf("generation timed out after %s", e.Elapsed)
}
