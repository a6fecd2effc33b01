package history

// Both backends satisfy Store.
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
