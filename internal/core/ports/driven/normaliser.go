package driven

import "context"

// TextNormaliser is one pass of the regulation text normalisation pipeline.
// Passes are pure string transformations.
type TextNormaliser interface {
	// Name returns the pass name for logging.
	Name() string

	// Normalise transforms the text.
	Normalise(text string) string
}

// TextPipeline normalises a raw regulation text file.
type TextPipeline interface {
	// NormaliseFile reads in, applies every pass and writes out.
	NormaliseFile(ctx context.Context, in, out string) error
}
