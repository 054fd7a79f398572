package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/genbi-ai/genbi-engine/pkg/config"
)

// OpenFunc opens a connection for one driver.
type OpenFunc func(ctx context.Context, cfg *config.DatasourceConfig, logger *zap.Logger) (Conn, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]OpenFunc)
)

// Register installs a driver's open function. Driver packages call
// this from init; importing a driver package makes it available.
func Register(driver string, open OpenFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[driver]; dup {
		panic(fmt.Sprintf("datasource: driver %q registered twice", driver))
	}
	registry[driver] = open
}

// Open connects using the driver named in cfg.
func Open(ctx context.Context, cfg *config.DatasourceConfig, logger *zap.Logger) (Conn, error) {
	registryMu.RLock()
	open, ok := registry[cfg.Driver]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown datasource driver %q (registered: %v)", cfg.Driver, Drivers())
	}
	return open(ctx, cfg, logger)
}

// Drivers lists registered driver names, sorted.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
