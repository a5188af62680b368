// Cadence - Predictive Artist Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package cache provides a thread-safe LRU cache with TTL expiration and
group invalidation.

It backs the hybrid recommendation cache: entries are keyed by request
(user, catalog fingerprint, limit, language) and grouped by user, so any
interaction, feedback or preference change for a user drops exactly that
user's cached lists.

# Characteristics

  - O(1) Get, Add and Remove through a hashmap plus doubly-linked list
  - O(1) eviction of the least recently used entry at capacity
  - lazy TTL expiration on Get, with CleanupExpired for periodic sweeps
  - O(k) RemoveGroup for the k entries of one group

# Usage Example

	c := cache.NewLRU[[]Recommendation](10000, 5*time.Minute)
	c.Add(key, userID, items)
	if items, ok := c.Get(key); ok {
	    return items
	}
	c.RemoveGroup(userID)
*/
package cache
