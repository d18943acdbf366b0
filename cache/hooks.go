package cache

// Hooks carries optional observer callbacks for cache lifecycle events.
// All callbacks receive the tag (cache key) involved; every field may be
// nil. Callbacks run synchronously on the caller's goroutine and should
// return quickly.
//
// OnDedupe is only raised by stores that can observe request coalescing
// (the redis store's in-flight dedup); the in-process store reports a
// coalesced caller as a hit.
type Hooks struct {
	OnHit    func(key string)
	OnMiss   func(key string)
	OnDedupe func(key string)
	OnError  func(key string, err error)
}

// EmitHit raises OnHit when set.
func (h Hooks) EmitHit(key string) {
	if h.OnHit != nil {
		h.OnHit(key)
	}
}

// EmitMiss raises OnMiss when set.
func (h Hooks) EmitMiss(key string) {
	if h.OnMiss != nil {
		h.OnMiss(key)
	}
}

// EmitDedupe raises OnDedupe when set.
func (h Hooks) EmitDedupe(key string) {
	if h.OnDedupe != nil {
		h.OnDedupe(key)
	}
}

// EmitError raises OnError when set.
func (h Hooks) EmitError(key string, err error) {
	if h.OnError != nil {
		h.OnError(key, err)
	}
}
