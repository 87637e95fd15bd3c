package substraitplan

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/arrowplane/substraitplan/plannode"
)

// Config contains configuration for plan conversion.
type Config struct {
	// Allocator for Arrow memory management; backs the column vectors
	// of values (virtual table) nodes.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If Logger is nil and LogLevel is specified, a new logger is
	// created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// If Logger is also provided, LogLevel is ignored (use a
	// pre-configured logger).
	LogLevel *slog.Level

	// ConnectorID stamps produced scan nodes.
	// OPTIONAL: "test-hive" if empty.
	ConnectorID string

	// TableName stamps produced scan nodes.
	// OPTIONAL: "hive_table" if empty.
	TableName string

	// Inputs are pre-registered upstream nodes; a scan whose first file
	// URI is "iterator:<N>" is substituted by Inputs[N].
	// OPTIONAL: May be nil when no plan references iterators.
	Inputs []plannode.Node
}

// Standard errors returned by the substraitplan package.
var (
	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid converter config")
)

// validateConfig checks that optional Config fields, when set, are valid.
func validateConfig(config Config) error {
	for i, input := range config.Inputs {
		if input == nil {
			return fmt.Errorf("input node %d is nil", i)
		}
	}
	return nil
}

// logger resolves the configured logger, honoring LogLevel when no
// pre-configured Logger is given.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if c.LogLevel != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *c.LogLevel}))
	}
	return slog.Default()
}
