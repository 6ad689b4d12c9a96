package coldata

import (
	"context"
	"sync"

	"github.com/tdsproto/go-coldata/msdsn"
)

type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

type ContextLogger interface {
	Log(ctx context.Context, category msdsn.Log, msg string)
}

// optionalLogger implements the ContextLogger interface with a default "do nothing" behavior
type optionalLogger struct {
	logger ContextLogger
}

func (o optionalLogger) Log(ctx context.Context, category msdsn.Log, msg string) {
	if o.logger != nil {
		o.logger.Log(ctx, category, msg)
	}
}

type loggerAdapter struct {
	logger Logger
}

func (la loggerAdapter) Log(_ context.Context, category msdsn.Log, msg string) {
	switch category {
	case msdsn.LogErrors:
		la.logger.Printf("ERROR: %s", msg)
	case msdsn.LogDebug:
		la.logger.Printf("DEBUG: %s", msg)
	default:
		la.logger.Println(msg)
	}
}

var (
	loggerMu      sync.RWMutex
	defaultLogger optionalLogger
)

// SetLogger sets a Logger used by sessions created without their own logger.
func SetLogger(logger Logger) {
	if logger == nil {
		SetContextLogger(nil)
		return
	}
	SetContextLogger(loggerAdapter{logger})
}

// SetContextLogger sets a ContextLogger used by sessions created without their own logger.
func SetContextLogger(ctxLogger ContextLogger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = optionalLogger{ctxLogger}
}

func currentLogger() optionalLogger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}
