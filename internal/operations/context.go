package operations

import (
	"colorcore/go-daemon/internal/cache"
	"colorcore/go-daemon/internal/config"
	"colorcore/go-daemon/internal/txformat"
)

// Context is the per-invocation bundle handed to an operation: the immutable
// process configuration, the cache-backend factory and the formatter chosen
// by the request's txformat parameter. A Context belongs to exactly one
// invocation and is discarded when it completes.
type Context struct {
	Config   config.Config
	NewCache cache.Factory
	Format   txformat.Formatter
}

// NewContext builds a fresh invocation context.
func NewContext(cfg config.Config, newCache cache.Factory, format txformat.Formatter) *Context {
	return &Context{Config: cfg, NewCache: newCache, Format: format}
}
