package cache

// SQL schemas for cache tables
// All cache tables use "cache_key" as the primary key column for consistency.
// expires_at is a unix timestamp so every entry carries its own TTL.

// OMDBTable is the table holding OMDB title/year lookups
const OMDBTable = "omdb_cache"

// OMDBCacheSchema defines the schema for OMDB lookup cache
const OMDBCacheSchema = `
CREATE TABLE IF NOT EXISTS omdb_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_omdb_expires_at ON omdb_cache(expires_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	OMDBCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
// Used to prevent SQL injection when interpolating table names
var ValidCacheTableNames = map[string]bool{
	OMDBTable: true,
}
