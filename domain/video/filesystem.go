package video

import "context"

// FileSystem defines the storage operations the trim pipeline needs.
// Implementations must report a missing path with an error matching fs.ErrNotExist.
type FileSystem interface {
	// Exists returns true if the file exists
	Exists(ctx context.Context, path string) (bool, error)

	// Copy copies src to dst, replacing dst if present
	Copy(ctx context.Context, src, dst string) error

	// MkdirAll creates path and any missing parents; an existing directory is not an error
	MkdirAll(ctx context.Context, path string) error

	// Remove deletes a single file
	Remove(ctx context.Context, path string) error

	// List returns the names of the entries in dir
	List(ctx context.Context, dir string) ([]string, error)
}
