// Package searcher answers semantic queries: it embeds the query text,
// runs a cosine-similarity search over stored chunk vectors, and returns
// ranked results. Responses can be cached per query with a short TTL.
package searcher
