// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Ingestion
//
//   - TextNormaliser: One text pass of the normalisation pipeline
//   - TextPipeline: Normalises a raw regulation file
//   - Segmenter: Splits normalised text into typed records
//   - Chunker: Splits records into bounded-length chunks
//   - ChunkPipeline: Segmenter and chunker for one regulation
//   - ChunkCleaner: Removes abnormal characters from a chunk file
//   - RegulationSource: Reads the normalised text of a regulation
//   - ChunkStore: Persists the chunk list as a JSON file
//   - ChunkValidator: Structural checks over a persisted chunk file
//   - FailedChunkLog: Chunks an index build could not store
//
// # Answering
//
//   - EmbeddingService: Generates vector embeddings
//   - EmbeddingCache: Bounded store of previously computed embeddings
//   - VectorIndex: Stores chunk vectors and answers nearest-neighbour queries
//   - IndexRunStore: History of index builds
//   - LLMService: Text generation for query expansion and answers
//   - PromptStore: Prompt templates
//
// # Ambient
//
//   - ConfigStore: Application configuration
//   - Metrics: Counters and histograms; NopMetrics when not exported
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser or postprocessor package
package driven
