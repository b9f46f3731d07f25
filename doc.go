// Package rcuhash implements a concurrent, in-memory hash map optimized
// for a high ratio of readers to writers.
//
// Reads run through an RCU-style quiescent-state epoch scheme and never
// take a lock. Writes are serialized per bucket by a small mutex. The
// table resizes itself online, migrating one bucket at a time without
// ever stopping readers, by keeping two tables — the live one and its
// successor — reachable at once while the migration is in flight.
//
// A HashTable must not be copied after first use.
package rcuhash
