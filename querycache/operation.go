package querycache

import "context"

// Operation is an ephemeral record of one intercepted data-access call.
// It is created per invocation and consumed synchronously.
type Operation struct {
	// Model is the entity type the call targets.
	Model string

	// Name identifies the operation kind ("findMany", "update", ...).
	Name string

	// Args is the argument payload; it feeds key serialization and is
	// otherwise opaque to the pipeline.
	Args []any

	// Exec runs the real operation against the source of truth. It must be
	// a func(context.Context) (T, error) for some T.
	Exec any
}

// Middleware is the single extension point the data-access layer calls into:
// one method, invoked once per operation, with the continuation carried in
// Operation.Exec.
type Middleware interface {
	Execute(ctx context.Context, op Operation) (any, error)
}

// mutatingOperations is the closed set of operation names treated as
// writes. It is intentionally not configurable: anything else classifies
// as a read.
var mutatingOperations = map[string]struct{}{
	"create":      {},
	"createMany":  {},
	"getOrCreate": {},
	"update":      {},
	"updateMany":  {},
	"upsert":      {},
	"upsertMany":  {},
	"delete":      {},
	"deleteMany":  {},
	"deleteWhere": {},
	"forceDelete": {},
}

// IsMutating reports whether name belongs to the fixed set of write
// operation kinds.
func IsMutating(name string) bool {
	_, ok := mutatingOperations[name]
	return ok
}
