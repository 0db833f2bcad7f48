// Package search indexes projects and tasks for free-text lookup.
//
// Index is implemented by MemoryIndex, a case-insensitive substring index for
// single-process use and tests, and by OpenSearchIndex, which keeps documents
// in an OpenSearch index. Every query is scoped to one owner.
package search
