// Package domain holds regula's entities and the rules over them that need
// no I/O.
//
// Regulation texts are segmented into Records (articles, tables, notes),
// split into bounded Chunks, embedded and indexed. A question yields ranked
// RetrievedCandidates, and the composed Answer cites the ones it used.
// Settings, ValidationReport and the run summaries describe the pipeline
// around them.
//
// The package imports the standard library only.
package domain
