package bunrepo

import (
	"context"
	"fmt"
	"reflect"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-query-cache/querycache"
)

// Interface assertion to ensure CachedRepository implements Repository[T]
var _ repository.Repository[any] = (*CachedRepository[any])(nil)

// listResult wraps the tuple result from List operations so it can travel
// through the cache as a single value.
type listResult[T any] struct {
	Records []T `json:"records" msgpack:"records"`
	Total   int `json:"total" msgpack:"total"`
}

// CachedRepository adapts a go-repository-bun repository to the
// interception pipeline: every non-transactional call becomes an Operation
// and flows through the pipeline, which decides whether it is served from
// cache, executed directly, or executed and followed by tag invalidation.
// Transactional and raw-SQL methods bypass the pipeline entirely.
type CachedRepository[T any] struct {
	base     repository.Repository[T]
	pipeline *querycache.Pipeline
	model    string
}

// New wraps base with caching, deriving the model name from T's type name
// normalized to snake_case. Use NewWithModel when the configured rules use
// a different name.
func New[T any](base repository.Repository[T], pipeline *querycache.Pipeline) *CachedRepository[T] {
	return NewWithModel(base, pipeline, modelName[T]())
}

// NewWithModel wraps base with caching under an explicit model name.
func NewWithModel[T any](base repository.Repository[T], pipeline *querycache.Pipeline, model string) *CachedRepository[T] {
	return &CachedRepository[T]{
		base:     base,
		pipeline: pipeline,
		model:    model,
	}
}

// Model returns the model name operations are recorded under.
func (c *CachedRepository[T]) Model() string {
	return c.model
}

// modelName derives a model identifier from T. Reflected type names can
// carry pointer markers and generic suffixes that would break prefix-based
// invalidation, so the name is normalized to a plain snake_case token.
func modelName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return toSnake(name)
}

// execute routes an operation through the pipeline and restores the typed
// result.
func execute[R any](ctx context.Context, p *querycache.Pipeline, op querycache.Operation) (R, error) {
	result, err := p.Execute(ctx, op)
	if err != nil {
		var zero R
		return zero, err
	}
	if result == nil {
		var zero R
		return zero, nil
	}
	typed, ok := result.(R)
	if !ok {
		var zero R
		return zero, fmt.Errorf("bunrepo: unexpected cached type %T for %s.%s", result, op.Model, op.Name)
	}
	return typed, nil
}

func (c *CachedRepository[T]) op(name string, args []any, exec any) querycache.Operation {
	return querycache.Operation{Model: c.model, Name: name, Args: args, Exec: exec}
}

// Get retrieves a single record matching the criteria, read-through cached.
func (c *CachedRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	return execute[T](ctx, c.pipeline, c.op("get", []any{criteria}, func(ctx context.Context) (T, error) {
		return c.base.Get(ctx, criteria...)
	}))
}

// GetByID retrieves a record by ID, read-through cached.
func (c *CachedRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	return execute[T](ctx, c.pipeline, c.op("getByID", []any{id, criteria}, func(ctx context.Context) (T, error) {
		return c.base.GetByID(ctx, id, criteria...)
	}))
}

// GetByIdentifier retrieves a record by identifier, read-through cached.
func (c *CachedRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return execute[T](ctx, c.pipeline, c.op("getByIdentifier", []any{identifier, criteria}, func(ctx context.Context) (T, error) {
		return c.base.GetByIdentifier(ctx, identifier, criteria...)
	}))
}

// List retrieves records and the total count, read-through cached as one
// entry.
func (c *CachedRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	res, err := execute[listResult[T]](ctx, c.pipeline, c.op("list", []any{criteria}, func(ctx context.Context) (listResult[T], error) {
		records, total, err := c.base.List(ctx, criteria...)
		return listResult[T]{Records: records, Total: total}, err
	}))
	if err != nil {
		return nil, 0, err
	}
	return res.Records, res.Total, nil
}

// Count returns the number of matching records, read-through cached.
func (c *CachedRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	return execute[int](ctx, c.pipeline, c.op("count", []any{criteria}, func(ctx context.Context) (int, error) {
		return c.base.Count(ctx, criteria...)
	}))
}

// Create inserts a record; on success the model's tags are invalidated.
func (c *CachedRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	return execute[T](ctx, c.pipeline, c.op("create", nil, func(ctx context.Context) (T, error) {
		return c.base.Create(ctx, record, criteria...)
	}))
}

// CreateMany inserts multiple records; on success the model's tags are
// invalidated.
func (c *CachedRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	return execute[[]T](ctx, c.pipeline, c.op("createMany", nil, func(ctx context.Context) ([]T, error) {
		return c.base.CreateMany(ctx, records, criteria...)
	}))
}

// GetOrCreate returns an existing record or creates it. It may write, so
// it is classified as mutating.
func (c *CachedRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	return execute[T](ctx, c.pipeline, c.op("getOrCreate", nil, func(ctx context.Context) (T, error) {
		return c.base.GetOrCreate(ctx, record)
	}))
}

// Update modifies a record; on success the model's tags are invalidated.
func (c *CachedRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return execute[T](ctx, c.pipeline, c.op("update", nil, func(ctx context.Context) (T, error) {
		return c.base.Update(ctx, record, criteria...)
	}))
}

// UpdateMany modifies multiple records.
func (c *CachedRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return execute[[]T](ctx, c.pipeline, c.op("updateMany", nil, func(ctx context.Context) ([]T, error) {
		return c.base.UpdateMany(ctx, records, criteria...)
	}))
}

// Upsert inserts or updates a record.
func (c *CachedRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return execute[T](ctx, c.pipeline, c.op("upsert", nil, func(ctx context.Context) (T, error) {
		return c.base.Upsert(ctx, record, criteria...)
	}))
}

// UpsertMany inserts or updates multiple records.
func (c *CachedRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return execute[[]T](ctx, c.pipeline, c.op("upsertMany", nil, func(ctx context.Context) ([]T, error) {
		return c.base.UpsertMany(ctx, records, criteria...)
	}))
}

// Delete removes a record; on success the model's tags are invalidated.
func (c *CachedRepository[T]) Delete(ctx context.Context, record T) error {
	_, err := execute[struct{}](ctx, c.pipeline, c.op("delete", nil, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.base.Delete(ctx, record)
	}))
	return err
}

// DeleteMany removes records matching the criteria.
func (c *CachedRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	_, err := execute[struct{}](ctx, c.pipeline, c.op("deleteMany", nil, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.base.DeleteMany(ctx, criteria...)
	}))
	return err
}

// DeleteWhere removes records matching the criteria.
func (c *CachedRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	_, err := execute[struct{}](ctx, c.pipeline, c.op("deleteWhere", nil, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.base.DeleteWhere(ctx, criteria...)
	}))
	return err
}

// ForceDelete removes a record bypassing soft delete.
func (c *CachedRepository[T]) ForceDelete(ctx context.Context, record T) error {
	_, err := execute[struct{}](ctx, c.pipeline, c.op("forceDelete", nil, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.base.ForceDelete(ctx, record)
	}))
	return err
}

// Transactional operations bypass the cache: reads inside a transaction
// must observe uncommitted state, and their writes are invalidated when the
// surrounding non-Tx call path commits.

func (c *CachedRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIDTx(ctx, tx, id, criteria...)
}

func (c *CachedRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIdentifierTx(ctx, tx, identifier, criteria...)
}

func (c *CachedRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return c.base.ListTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return c.base.CountTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	return c.base.CreateTx(ctx, tx, record, criteria...)
}

func (c *CachedRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	return c.base.CreateManyTx(ctx, tx, records, criteria...)
}

func (c *CachedRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	return c.base.GetOrCreateTx(ctx, tx, record)
}

func (c *CachedRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return c.base.UpdateTx(ctx, tx, record, criteria...)
}

func (c *CachedRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return c.base.UpdateManyTx(ctx, tx, records, criteria...)
}

func (c *CachedRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return c.base.UpsertTx(ctx, tx, record, criteria...)
}

func (c *CachedRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return c.base.UpsertManyTx(ctx, tx, records, criteria...)
}

func (c *CachedRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return c.base.DeleteTx(ctx, tx, record)
}

func (c *CachedRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return c.base.DeleteManyTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return c.base.DeleteWhereTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return c.base.ForceDeleteTx(ctx, tx, record)
}

// Raw executes a raw SQL query directly against the base repository.
func (c *CachedRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	return c.base.Raw(ctx, sql, args...)
}

// RawTx executes a raw SQL query within a transaction.
func (c *CachedRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	return c.base.RawTx(ctx, tx, sql, args...)
}

// Handlers returns the model handlers from the base repository.
func (c *CachedRepository[T]) Handlers() repository.ModelHandlers[T] {
	return c.base.Handlers()
}
