// Package cache provides a generic, concurrency-safe LRU cache.
//
// It backs the in-memory session store, which needs a hard bound on the
// number of live sessions plus a way to sweep expired ones:
//
//	c := cache.NewLRUCache[string, []byte](10_000)
//	c.Put("toa:sess:abc", data)
//	v, ok := c.Get("toa:sess:abc")      // marks the entry as recently used
//	n := c.RemoveFunc(func(k string, v []byte) bool { return expired(v) })
//
// Every operation is O(1) except RemoveFunc and Clear, which walk the list.
package cache
