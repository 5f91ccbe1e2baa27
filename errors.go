package translatable

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

const configurationCode = "TRANSLATABLE_CONFIGURATION"

// ErrConfiguration matches every declaration-time failure via errors.Is.
var ErrConfiguration = errors.New("translatable: configuration error")

// ConfigurationError reports a declaration that cannot be bound, most often
// an attribute without a backing column. It is only returned by Declare.
type ConfigurationError struct {
	Model     string
	Table     string
	Attribute string
	Reason    string
	cause     error
}

func newConfigurationError(model, table, attribute, reason string, cause error) *ConfigurationError {
	if cause == nil {
		cause = errors.New(reason)
	}
	return &ConfigurationError{
		Model:     model,
		Table:     table,
		Attribute: attribute,
		Reason:    reason,
		cause: goerrors.Wrap(cause, goerrors.CategoryValidation, reason).
			WithTextCode(configurationCode),
	}
}

func missingColumnError(model, table, attribute string) *ConfigurationError {
	return newConfigurationError(model, table, attribute,
		fmt.Sprintf("no such column '%s' in '%s' model", attribute, model), nil)
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

// Unwrap exposes the categorised go-errors value.
func (e *ConfigurationError) Unwrap() error {
	return e.cause
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NotFoundError is returned when a record lookup misses.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
