package mcpserver

import (
	"time"

	"github.com/percolate/pedantic/internal/config"
)

// cfg is the active server configuration, initialized at package load time.
var cfg = config.Load()

// Schema cache settings.
const (
	schemaCacheMaxSize = 10
	schemaCacheTTL     = 15 * time.Minute
)
