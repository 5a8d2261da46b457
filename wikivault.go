// Package wikivault provides a resumable harvester for wiki-style sites.
// It discovers categories, enumerates their member articles, fetches each
// article through a pluggable HTTP or browser fetcher, and stores raw HTML
// in a durable document store, checkpointing its position so an interrupted
// run resumes without repeating completed work.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, resty/, bbolt/).
package wikivault
