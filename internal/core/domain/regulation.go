package domain

import "fmt"

// Regulation is one configured regulation source.
type Regulation struct {
	// Name is the full regulation title, e.g. "GB50025_2022_宿舍、旅馆建筑项目规范".
	Name string

	// Path is the normalised text file to segment.
	Path string

	// Abbr is the short code used to prefix chunk ids, e.g. "sslg".
	Abbr string
}

// Validate checks the regulation has the fields the chunker relies on.
func (r Regulation) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: regulation name is required", ErrInvalidInput)
	}
	if r.Abbr == "" {
		return fmt.Errorf("%w: regulation %q has no abbreviation", ErrInvalidInput, r.Name)
	}
	if r.Path == "" {
		return fmt.Errorf("%w: regulation %q has no path", ErrInvalidInput, r.Name)
	}
	return nil
}

// RegulationSummary describes the outcome of chunking one regulation.
type RegulationSummary struct {
	Name    string `json:"name"`
	Abbr    string `json:"abbr"`
	Records int    `json:"records"`
	Chunks  int    `json:"chunks"`
	Dropped int    `json:"dropped"`
	Skipped bool   `json:"skipped"`
}

// ChunkRun is the result of one batch chunking run.
type ChunkRun struct {
	Regulations []RegulationSummary `json:"regulations"`
	Chunks      []Chunk             `json:"-"`
	OutputPath  string              `json:"output_path"`
}

// RegulationChunks is the output of segmenting and chunking one regulation.
type RegulationChunks struct {
	Summary RegulationSummary
	Chunks  []Chunk
	Dropped []DroppedParagraph
}
