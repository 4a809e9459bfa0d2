package domain

import (
	"strconv"
	"strings"
)

// RecordType identifies the structural kind of a regulation unit.
type RecordType string

// Record types produced by segmentation.
const (
	// RecordArticle is a numbered provision (N.N.N).
	RecordArticle RecordType = "article"

	// RecordTable is a table block introduced by the table sentinel.
	RecordTable RecordType = "table"

	// RecordNote is a 注： paragraph attached to the preceding table.
	RecordNote RecordType = "note"
)

// IsValid returns true if the record type is recognised.
func (t RecordType) IsValid() bool {
	switch t {
	case RecordArticle, RecordTable, RecordNote:
		return true
	default:
		return false
	}
}

// RequiresRelatedTo returns true if records of this type must reference an owner.
func (t RecordType) RequiresRelatedTo() bool {
	return t == RecordTable || t == RecordNote
}

// String returns the string representation.
func (t RecordType) String() string {
	return string(t)
}

// Record is a typed unit of regulation text.
// It is implemented by Article, Table and Note; each variant carries
// exactly the fields it needs, so a table or note always has an owner
// and an article never does.
type Record interface {
	// ID returns the record identifier (e.g. "5.1.2", "table_5.1.2", "note_5.1.2").
	ID() string

	// Type returns the record variant.
	Type() RecordType

	// Content returns the paragraph text.
	Content() string

	// RelatedTo returns the owning id for tables and notes.
	RelatedTo() (string, bool)

	// Chapter returns the leading integer token of the record's numbering.
	Chapter() string
}

// Article is a numbered regulatory provision.
type Article struct {
	// Number is the article number, e.g. "5.1.2" or "3.0.4A".
	Number string

	// Text is the full paragraph, including the number.
	Text string
}

// ID returns the article number.
func (a Article) ID() string { return a.Number }

// Type returns RecordArticle.
func (a Article) Type() RecordType { return RecordArticle }

// Content returns the article text.
func (a Article) Content() string { return a.Text }

// RelatedTo is always empty for articles.
func (a Article) RelatedTo() (string, bool) { return "", false }

// Chapter returns the chapter of the article number.
func (a Article) Chapter() string { return ChapterOf(a.Number) }

// Table is a table block belonging to the article it is numbered after.
type Table struct {
	// Number is the table number captured from the sentinel, e.g. "5.1.2".
	Number string

	// Text is the full table block.
	Text string
}

// ID returns "table_" + Number.
func (t Table) ID() string { return "table_" + t.Number }

// Type returns RecordTable.
func (t Table) Type() RecordType { return RecordTable }

// Content returns the table text.
func (t Table) Content() string { return t.Text }

// RelatedTo returns the table number.
func (t Table) RelatedTo() (string, bool) { return t.Number, true }

// Chapter returns the chapter of the table number.
func (t Table) Chapter() string { return ChapterOf(t.Number) }

// Note is a 注： paragraph that annotates a table.
type Note struct {
	// TableNumber is the number of the table the note follows.
	TableNumber string

	// Text is the full note paragraph.
	Text string

	// Seq numbers the notes of one table from 1. Zero is treated as 1.
	Seq int
}

// ID returns "note_" + TableNumber for the first note of a table and
// "note_" + TableNumber + "_" + Seq for the ones after it.
func (n Note) ID() string {
	if n.Seq <= 1 {
		return "note_" + n.TableNumber
	}
	return "note_" + n.TableNumber + "_" + strconv.Itoa(n.Seq)
}

// Type returns RecordNote.
func (n Note) Type() RecordType { return RecordNote }

// Content returns the note text.
func (n Note) Content() string { return n.Text }

// RelatedTo returns the owning table id.
func (n Note) RelatedTo() (string, bool) { return "table_" + n.TableNumber, true }

// Chapter returns the chapter of the owning table's number.
func (n Note) Chapter() string { return ChapterOf(n.TableNumber) }

// ChapterOf returns the token before the first "." of an id, or "" when
// the id contains no ".".
func ChapterOf(id string) string {
	head, _, found := strings.Cut(id, ".")
	if !found {
		return ""
	}
	return head
}

// Ensure the variants implement Record.
var (
	_ Record = Article{}
	_ Record = Table{}
	_ Record = Note{}
)

// Segmentation is the result of segmenting one normalised text.
type Segmentation struct {
	// Records are the recognised records in document order.
	Records []Record

	// Dropped are paragraphs that matched no record pattern.
	Dropped []DroppedParagraph
}

// DroppedParagraph is a paragraph the segmenter could not classify.
type DroppedParagraph struct {
	// Index is the paragraph position in the text, from 0.
	Index int

	// Preview is the first characters of the paragraph.
	Preview string
}
