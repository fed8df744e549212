// Package config holds the ambient configuration this module's operator
// and CLI are tuned with, shaped after the teacher's util.Config /
// util.DebugOptions TOML layout.
package config

// PoolConfig tunes the Batch Pool (§4.4).
type PoolConfig struct {
	InitialBatchCapacity int `toml:"initialBatchCapacity"`
}

// HeapConfig tunes the Merge Heap (§4.5).
type HeapConfig struct {
	DefaultCapacity int `toml:"defaultCapacity"`
}

// IngestConfig tunes the buffered per-chunk inserter (§6).
type IngestConfig struct {
	MaxBufferedTuples  int `toml:"maxBufferedTuples"`
	MaxBufferedBytes   int `toml:"maxBufferedBytes"`
	MaxRetainedBuffers int `toml:"maxRetainedBuffers"`
}

// DebugOptions mirrors the teacher's util.DebugOptions shape.
type DebugOptions struct {
	ShowRaw   bool `toml:"showRaw"`
	PrintPlan bool `toml:"printPlan"`
}

type Config struct {
	Pool   PoolConfig   `toml:"pool"`
	Heap   HeapConfig   `toml:"heap"`
	Ingest IngestConfig `toml:"ingest"`
	Debug  DebugOptions `toml:"debug"`
}

// Default returns the constants the spec calls out by name:
// INITIAL_BATCH_CAPACITY and BINARY_HEAP_DEFAULT_CAPACITY (§2, §4.4, §4.5),
// plus the ingest buffering policy from §6.
func Default() *Config {
	return &Config{
		Pool: PoolConfig{InitialBatchCapacity: 64},
		Heap: HeapConfig{DefaultCapacity: 16},
		Ingest: IngestConfig{
			MaxBufferedTuples:  1000,
			MaxBufferedBytes:   64 * 1024,
			MaxRetainedBuffers: 32,
		},
	}
}
