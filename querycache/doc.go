// Package querycache implements the query interception and invalidation
// engine: the single pipeline every data-access invocation passes through.
//
// # Overview
//
// Each invocation arrives as an Operation (model, operation name, argument
// payload, and the continuation that executes the real call). The pipeline:
//
//  1. Classifies it as skip, read, or write. Skips come from configuration
//     (excluded models, globally excluded methods, rule-level excluded
//     methods); writes are a closed enumeration of mutating operation
//     names; everything else is a read.
//  2. For reads, resolves the model's cache binding from the registry,
//     creating it on first sight. The binding fixes the model's tag key and
//     TTL for the lifetime of the pipeline: the first registration wins and
//     concurrent first-reads converge on a single binding.
//  3. Serves the read through the backing store under the tag
//     <tagKey>~<callKey>. A cache-layer failure is logged and degrades to
//     direct execution; only a source-of-truth failure reaches the caller.
//  4. For writes, executes the real call first and, only on success, wipes
//     every tag matching *<tagKey>~* for the model and each of its declared
//     related models. Deletions run concurrently and are best-effort.
//
// # Cacheability
//
// A model resolves to no binding, and its reads always go to the source,
// when it is listed in ExcludeModels, when it has no rule while
// SkipUnconfigured is set, or when its effective TTL is zero (the global
// default of 0 means "no caching unless a rule overrides").
//
// # Usage
//
//	store, _ := cacheinfra.NewSturdycStore(cacheinfra.DefaultConfig(), cfg.Hooks)
//	pipeline := querycache.New(cfg, store, cache.NewDefaultKeySerializer())
//
//	result, err := pipeline.Execute(ctx, querycache.Operation{
//		Model: "User",
//		Name:  "findMany",
//		Args:  []any{filter},
//		Exec: func(ctx context.Context) ([]User, error) {
//			return db.FindUsers(ctx, filter)
//		},
//	})
//
// Most callers will not build Operations by hand: bunrepo routes a full
// go-repository-bun repository through the pipeline, and pkg/di wires the
// whole stack from a cache.Config.
package querycache
