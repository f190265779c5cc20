// Package resolution maps display titles to Steam app ids.
//
// Resolver consults, in order, the manual override table, the resolution
// cache and finally Steam search. Search walks the candidates produced by
// BuildQueryCandidates until one returns results, then SelectBest scores
// them against the full title. Accepted matches are cached and may trigger
// an artwork download; rejections and misses are never cached.
package resolution
