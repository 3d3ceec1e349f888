package video

import "context"

// Outcome is the classified result of one engine invocation
type Outcome struct {
	ReturnCode int
	Output     string
}

// Success reports whether the engine returned its success code
func (o Outcome) Success() bool {
	return o.ReturnCode == 0
}

// Engine defines the codec engine capability used for trimming.
// This is a port that can be implemented by different infrastructure adapters.
type Engine interface {
	// Execute runs the command once and waits for it to finish. A non-nil error means
	// the engine could not be run at all; a finished run is always reported via Outcome.
	Execute(ctx context.Context, cmd *TrimCommand) (Outcome, error)
}

// DurationProber reports the length of a media file in seconds
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}
