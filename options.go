package rcuhash

// Option configures a HashTable constructed by New, following the
// teacher's functional-options pattern (NewMapOf / WithPresize /
// WithShrinkEnabled in mapof.go).
type Option[K comparable, V any] func(*config[K, V])

type config[K comparable, V any] struct {
	growThreshold int
	shrinkEnabled bool
	maxBuckets    int
	hasher        func(K) uint64
}

func newConfig[K comparable, V any]() config[K, V] {
	return config[K, V]{
		growThreshold: defaultGrowThreshold,
		shrinkEnabled: true,
	}
}

// WithGrowThreshold overrides spec.md §6's recommended node-scan
// threshold (5) that triggers a grow proposal.
func WithGrowThreshold[K comparable, V any](n int) Option[K, V] {
	return func(c *config[K, V]) {
		if n > 0 {
			c.growThreshold = n
		}
	}
}

// WithShrinkEnabled toggles the shrink-on-sparse-removal trigger from
// spec.md §4.5/§9. Shrink is one of spec.md's open questions ("an
// implementer may omit shrink"); this module defaults it on since the
// stress scenarios in spec.md §8.6 assume shrink happens, and exposes the
// toggle for implementers who'd rather have a grow-only table.
func WithShrinkEnabled[K comparable, V any](enabled bool) Option[K, V] {
	return func(c *config[K, V]) { c.shrinkEnabled = enabled }
}

// WithMaxBuckets caps the bucket count a resize can grow to. Spec.md §9
// notes one source variant hard-caps at 512 as debugging scaffolding and
// specifies the cap as optional, disabled-by-default configuration; zero
// (the default) means unbounded.
func WithMaxBuckets[K comparable, V any](n int) Option[K, V] {
	return func(c *config[K, V]) { c.maxBuckets = n }
}

// WithHasher supplies a custom hash function for K, bypassing
// defaultHasher's reuse of Go's builtin map hasher. Mirrors the teacher's
// NewMapOfWithHasher.
func WithHasher[K comparable, V any](h func(K) uint64) Option[K, V] {
	return func(c *config[K, V]) { c.hasher = h }
}
