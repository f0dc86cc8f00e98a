// Package flatfile implements the store interfaces on top of delimited text
// files. Each entity type lives in its own file, one record per line, and
// every mutation rewrites the affected file in full. The package keeps the
// whole data set in memory behind a single coarse lock; files are only a
// synchronous snapshot of that state, with no durability guarantees beyond
// the write itself.
package flatfile
