// Package kvstore implements a chained hash store of named, typed values.
//
// # Overview
//
// Keys live in a pool in insertion order. Each bucket is a slice of pool
// indices; a key belongs to bucket hash(name) mod Buckets(). A bloom filter
// over the key names answers most misses without touching a bucket.
//
// # Load Factor
//
// Add never leaves Len()/Buckets() at or above 0.75. When the next key would
// cross that bound the bucket array grows by a factor of four and every key
// is rehashed in pool order, so pool positions survive a resize. Once
// MaxBuckets is reached, or when FixedBuckets is set, Add fails with
// ErrLoadFactor instead.
//
// # Payloads
//
// A key holds one of *stream.Stream, *list.List, *bitvec.Vector,
// *table.Table or a nested *Store. Removing a key releases its payload and
// every link that pointed at it.
//
// A Store is not safe for concurrent use.
package kvstore
