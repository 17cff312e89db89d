// Package ratings implements the rating-resolution pipeline: given an album
// title and artist name from Spotify, find the matching release on Discogs,
// extract its community rating, and normalize it to a 0-10 scale.
//
// The pipeline is layered:
//
//   - [Normalize] and [TitleVariants] canonicalize free-form names for
//     comparison and progressively strip edition noise to widen search recall.
//   - [BestMatch] selects a search candidate via exact-then-partial matching.
//   - [Resolver] orchestrates the multi-strategy search: direct release
//     search (lightly cleaned, then aggressively cleaned, then title
//     variants), falling back to scanning the matched artist's releases.
//   - [CacheGate] fronts the resolver with a persistent get-or-compute cache
//     keyed by the lowercased (album, artist) pair. A null row records
//     "checked, nothing found" so a failed lookup is never retried.
//
// The gate is the only sanctioned entry point for resolution; calling the
// resolver directly defeats the at-most-one-attempt cache invariant. No
// failure inside the pipeline escapes the gate as an error: every path
// terminates in a well-defined [Outcome].
package ratings
