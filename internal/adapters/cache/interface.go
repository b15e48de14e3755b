package cache

// Keyed caches used with GetOrCreate.
//
// An entry is either missing, claimed (some caller is creating it) or valid.
type Cache[T any] interface {
	getOrClaim(key string) hitResult[T]
	set(key string, data T)
	delete(key string)
	wait()
}

type hitResult[T any] struct {
	data    T
	valid   bool
	claimed bool
}
