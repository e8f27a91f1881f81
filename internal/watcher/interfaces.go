package watcher

import "context"

// FileWatcher monitors a fixed set of source files for changes with debouncing.
type FileWatcher interface {
	// Start begins watching, calling callback with each debounced batch of changed files.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources. Safe to call more than once.
	Stop() error
}
