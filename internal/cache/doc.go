// Package cache implements the TTL result cache for search queries.
//
// Entries are keyed by a fingerprint of the normalized query text, so
// queries differing only in surrounding whitespace or letter case share
// one entry. Expired entries are removed lazily when read and swept
// eagerly when the cache is loaded from storage. Every mutation is
// written through to the backing store, so a crash loses at most the
// in-flight write.
package cache
