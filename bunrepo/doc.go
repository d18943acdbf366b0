// Package bunrepo adapts go-repository-bun repositories to the query
// interception pipeline.
//
// CachedRepository[T] is a drop-in replacement for repository.Repository[T]:
// every non-transactional method is wrapped in a querycache.Operation and
// routed through a shared Pipeline, which serves cacheable reads from the
// backing store and invalidates the model's tags after successful writes.
// Transactional (*Tx) and raw-SQL methods go straight to the base
// repository so in-transaction reads see uncommitted state.
//
//	pipeline := querycache.New(cfg, store, nil)
//	users := bunrepo.NewWithModel(baseUserRepo, pipeline, "User")
//
// When no explicit model name is given, it is derived from T's type name in
// snake_case; configured ModelRules must use the same spelling.
package bunrepo
