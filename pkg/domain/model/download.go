package model

// DownloadResult represents the result of a finished transfer
type DownloadResult struct {
	ID    string // Transfer ID used in emitted events
	Path  string // Path of the written file
	Bytes uint64 // Number of bytes written
}
