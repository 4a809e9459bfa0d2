// Package file holds the adapters that live under ~/.regula: the TOML
// config store and the editable prompt templates.
package file
