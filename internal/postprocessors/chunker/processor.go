// Package chunker splits regulation records into bounded-length chunks on
// sentence boundaries.
package chunker

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/regula/internal/core/domain"
	"github.com/custodia-labs/regula/internal/core/ports/driven"
)

// DefaultMaxLength is the default maximum chunk length in characters.
const DefaultMaxLength = 400

// sentenceEnds are the terminal punctuation marks a sentence is split after.
const sentenceEnds = "。；！？"

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits record content into chunks of at most maxLength characters.
type Processor struct {
	maxLength int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxLength sets the maximum chunk length in characters.
func WithMaxLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxLength = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxLength returns the maximum chunk length in characters.
func (p *Processor) MaxLength() int {
	return p.maxLength
}

// Chunks implements driven.Chunker. Chunk ids are {abbr}_{record id}_{n}
// with n counted from 1 within each record.
func (p *Processor) Chunks(records []domain.Record, reg domain.Regulation) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(records))
	for _, rec := range records {
		rel, hasRel := rec.RelatedTo()
		chapter := rec.Chapter()

		for i, content := range p.Split(rec.Content()) {
			c := domain.Chunk{
				ChunkID:   reg.Abbr + "_" + rec.ID() + "_" + strconv.Itoa(i+1),
				Content:   content,
				ArticleID: rec.ID(),
				Type:      rec.Type(),
				Chapter:   chapter,
				SpecName:  reg.Name,
				SpecAbbr:  reg.Abbr,
			}
			if hasRel {
				r := rel
				c.RelatedTo = &r
			}
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// Split returns the chunks for one text. Whitespace runs are collapsed
// first. Text within the limit is returned whole; longer text is split
// after 。；！？ and sentences are packed greedily. A sentence longer than
// the limit is cut into fixed windows.
func (p *Processor) Split(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= p.maxLength {
		return []string{text}
	}

	var (
		packed  []string
		current string
	)
	for _, sentence := range sentences(text) {
		if current != "" && utf8.RuneCountInString(current+sentence) > p.maxLength {
			packed = append(packed, strings.TrimSpace(current))
			current = sentence
			continue
		}
		current += sentence
	}
	if current != "" {
		packed = append(packed, strings.TrimSpace(current))
	}

	out := make([]string, 0, len(packed))
	for _, chunk := range packed {
		out = append(out, window(chunk, p.maxLength)...)
	}
	return out
}

// sentences splits text after each terminal mark, keeping the mark with
// its sentence. Text after the last mark is returned as a final sentence.
func sentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if strings.ContainsRune(sentenceEnds, r) {
			end := i + utf8.RuneLen(r)
			out = append(out, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// window cuts s into pieces of at most n characters.
func window(s string, n int) []string {
	r := []rune(s)
	if len(r) <= n {
		return []string{s}
	}
	out := make([]string, 0, len(r)/n+1)
	for i := 0; i < len(r); i += n {
		end := i + n
		if end > len(r) {
			end = len(r)
		}
		out = append(out, string(r[i:end]))
	}
	return out
}
