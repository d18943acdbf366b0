package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// Driver identifies the backing tag store implementation.
type Driver string

const (
	// DriverMemory keeps tags in process using the sturdyc-backed store.
	DriverMemory Driver = "memory"
	// DriverRedis keeps tags in a shared redis instance.
	DriverRedis Driver = "redis"
)

// StorageConfig describes which backing store to use and how to reach it.
// Addr, Password, DB and Prefix only apply to the redis driver.
type StorageConfig struct {
	Driver   Driver
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// ModelRule declares caching behavior for one entity type. The Model name is
// the natural key: when the same model is declared more than once, the last
// declaration wins.
type ModelRule struct {
	// Model is the entity type name this rule applies to.
	Model string

	// CacheTime overrides the global default TTL for this model.
	// Zero means inherit the global value.
	CacheTime time.Duration

	// TagKey overrides the tag namespace used for this model's cache
	// entries. Defaults to the model name.
	TagKey string

	// ExcludeMethods lists operation names that bypass the cache for this
	// model only.
	ExcludeMethods []string

	// RelatedModels lists entity types whose tags are invalidated together
	// with this model's tags after a successful write.
	RelatedModels []string
}

// Validate checks the rule for structural problems.
func (r ModelRule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Model, validation.Required),
		validation.Field(&r.CacheTime, validation.Min(time.Duration(0))),
	)
}

// Config holds the global caching configuration. It is consumed once at
// pipeline construction and never mutated afterwards.
type Config struct {
	// Models declares per-entity-type caching rules.
	Models []ModelRule

	// ExcludeModels lists entity types that are never cached. No binding is
	// ever created for them.
	ExcludeModels []string

	// ExcludeMethods lists operation names that are never cached, for any
	// model.
	ExcludeMethods []string

	// CacheTime is the default TTL. Zero disables caching for any model
	// without a rule-level override.
	CacheTime time.Duration

	// SkipUnconfigured disables the fall-through behavior: when true, a
	// model without a declared rule always goes to the source of truth.
	// When false (the default) unconfigured models are cached with the
	// global TTL under their own name.
	SkipUnconfigured bool

	// Transformer encodes cached values for stores that persist bytes.
	// Defaults to msgpack.
	Transformer Transformer

	// Hooks receives cache lifecycle events.
	Hooks Hooks

	// Storage selects and configures the backing store.
	Storage StorageConfig

	// Logger receives cache-failure and invalidation-failure reports.
	// Defaults to a no-op logger.
	Logger *zap.Logger
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CacheTime, validation.Min(time.Duration(0))),
		validation.Field(&c.Storage, validation.By(func(any) error { return c.Storage.Validate() })),
		validation.Field(&c.Models, validation.By(func(any) error {
			for _, rule := range c.Models {
				if err := rule.Validate(); err != nil {
					return err
				}
			}
			return nil
		})),
	)
}

// Validate checks the storage descriptor.
func (s StorageConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.In(Driver(""), DriverMemory, DriverRedis)),
		validation.Field(&s.Addr, validation.Required.When(s.Driver == DriverRedis)),
	)
}

// ConfigError represents a configuration or argument validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
