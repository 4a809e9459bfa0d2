// Package services implements the driving port interfaces.
//
// IngestionService turns regulation texts into the chunk file,
// IndexService embeds that file into the vector index, and AskService
// runs retrieval and answer composition for a question. SettingsService
// reads and writes the configuration.
//
// Services depend only on domain and the driven ports; adapters are
// injected by the CLI.
package services
