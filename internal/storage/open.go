package storage

import (
	"fmt"
	"log"

	"github.com/dyike/QuantumGPT/config"
)

// Open returns the KV backend selected by cfg.StoreBackend.
func Open(cfg config.Config) (KV, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Printf("[Storage] using in-memory store")
		return NewMemoryKV(), nil
	case config.StoreSQLite, "":
		path := cfg.DBPath()
		log.Printf("[Storage] using sqlite store at %s", path)
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
