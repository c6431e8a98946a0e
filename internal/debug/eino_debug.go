package debug

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino-ext/devops"

	"github.com/dyike/QuantumGPT/config"
)

// EinoDebugger starts the eino visual debug server so the strategy and
// screener graphs can be inspected while the service runs.
type EinoDebugger struct {
	enabled bool
	verbose bool
	port    int
}

func NewEinoDebugger(cfg config.Config) *EinoDebugger {
	return &EinoDebugger{
		enabled: cfg.EinoDebugEnabled,
		verbose: cfg.Debug,
		port:    cfg.EinoDebugPort,
	}
}

// Initialize must run before any graph is compiled.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.enabled {
		return nil
	}
	if d.verbose {
		log.Printf("[EinoDebug] initializing visual debug plugin on port %d", d.port)
	}
	if err := devops.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}
	log.Printf("[EinoDebug] debug server at %s", d.URL())
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.enabled
}

func (d *EinoDebugger) URL() string {
	if !d.enabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.port)
}
