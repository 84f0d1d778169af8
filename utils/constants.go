package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = 10 * time.Minute

// IdempotencyPrefix namespaces appointment creation claims.
const IdempotencyPrefix = "idem:appointment:"

// IdempotencyTTL bounds how long a creation key is remembered.
const IdempotencyTTL = 24 * time.Hour

// SpecialtiesCacheKey holds the cached specialty catalog.
const SpecialtiesCacheKey = "cache:specialties"
