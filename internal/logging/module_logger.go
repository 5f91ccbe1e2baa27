package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const (
	rootModule       = "translatable"
	declareModule    = "translatable.declare"
	storeModule      = "translatable.store"
	queryModule      = "translatable.query"
	collectionModule = "translatable.collection"
)

const (
	fieldAttribute = "attribute"
	fieldTable     = "table"
	fieldStorage   = "storage"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// DeclareLogger returns the logger used while binding attributes.
func DeclareLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, declareModule)
}

// StoreLogger returns the logger used by translated value stores.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// QueryLogger returns the logger used by the predicate builder.
func QueryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, queryModule)
}

// CollectionLogger returns the logger used by record collections.
func CollectionLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, collectionModule)
}

// WithAttribute enriches logger with the table, attribute, and storage kind of
// a binding. Empty values are skipped.
func WithAttribute(logger interfaces.Logger, table, attribute, storage string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(table); trimmed != "" {
		fields[fieldTable] = trimmed
	}
	if trimmed := strings.TrimSpace(attribute); trimmed != "" {
		fields[fieldAttribute] = trimmed
	}
	if trimmed := strings.TrimSpace(storage); trimmed != "" {
		fields[fieldStorage] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

// WithFields attaches structured fields when logger implements
// interfaces.FieldsLogger; other loggers are returned unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return fieldsLogger.WithFields(copied)
}
