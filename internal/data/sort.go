package data

// Shared ORDER BY direction tokens used by repository query builders.
const (
	sortDirAsc  = "ASC"
	sortDirDesc = "DESC"
)
