// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

/*
Package cache provides a thread-safe in-memory TTL cache.

The API uses it to hold feed candidate lists between sync runs. A finished
run clears it so feeds never outlive the catalog they were built from.

Usage:

	c := cache.New[[]*models.Product](30 * time.Second)
	key := cache.GenerateKey("feed_candidates", params)
	if v, ok := c.Get(key); ok {
	    return v
	}
	c.Set(key, loaded)

Expired entries are removed lazily on Get and swept at most once per TTL
during Set, so no background goroutine is needed.
*/
package cache
