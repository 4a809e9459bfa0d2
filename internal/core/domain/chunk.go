package domain

// Chunk is a bounded-length fragment of a Record's content.
// It is the unit that is embedded, indexed and retrieved.
type Chunk struct {
	// ChunkID is globally unique: {spec_abbr}_{article_id}_{sequence}.
	ChunkID string `json:"chunk_id"`

	// Content is the fragment text.
	Content string `json:"content"`

	// ArticleID is the id of the source record.
	ArticleID string `json:"article_id"`

	// Type is the source record type.
	Type RecordType `json:"type"`

	// Chapter is the leading numeral of the record numbering.
	Chapter string `json:"chapter"`

	// SpecName is the full regulation name.
	SpecName string `json:"spec_name"`

	// SpecAbbr is the short regulation code used as the id prefix.
	SpecAbbr string `json:"spec_abbr"`

	// RelatedTo is the owning id for tables and notes.
	RelatedTo *string `json:"related_to,omitempty"`
}

// Metadata returns the attributes stored alongside the chunk vector.
func (c Chunk) Metadata() ChunkMetadata {
	return ChunkMetadata{
		ArticleID: c.ArticleID,
		SpecName:  c.SpecName,
		SpecAbbr:  c.SpecAbbr,
		Chapter:   c.Chapter,
		Type:      c.Type,
	}
}

// ChunkMetadata is the metadata attached to each vector in the index.
type ChunkMetadata struct {
	ArticleID string     `json:"article_id"`
	SpecName  string     `json:"spec_name"`
	SpecAbbr  string     `json:"spec_abbr"`
	Chapter   string     `json:"chapter"`
	Type      RecordType `json:"type"`
}

// CleanedChunk is the output of the abnormal-character cleaning pass.
type CleanedChunk struct {
	ChunkID         string `json:"chunk_id"`
	Content         string `json:"content"`
	OriginalContent string `json:"original_content"`
}

// CleanReport summarises one metadata cleaning run.
type CleanReport struct {
	// Chunks is the number of chunks written.
	Chunks int `json:"chunks"`

	// Changed is the number of chunks whose content lost characters.
	Changed int `json:"changed"`

	// Abnormal lists each removed character once, in first-seen order.
	Abnormal []string `json:"abnormal"`

	// Warnings lists coerced or skipped input.
	Warnings []string `json:"warnings"`

	// OutputPath is the cleaned file location.
	OutputPath string `json:"output_path"`
}
