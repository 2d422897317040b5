package model

// EventName identifies a notification sent to an EventSink.
type EventName string

const (
	EventDownloadProgress EventName = "DOWNLOAD_PROGRESS"
	EventDownloadFinished EventName = "DOWNLOAD_FINISHED"
)

// TransferState is the live bookkeeping of one download. JSON field names
// follow the payload consumed by existing front ends.
type TransferState struct {
	ID               string  `json:"download_id"`
	TotalBytes       uint64  `json:"filesize"`
	TransferredBytes uint64  `json:"transfered"`
	RateBytesPerSec  float64 `json:"transfer_rate"`
	PercentComplete  float64 `json:"percentage"`
}

// Percent computes the completion percentage for transferred out of total.
// It returns 0 when total is 0.
func Percent(transferred, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(transferred) * 100 / float64(total)
}

// Completed reports whether the transfer reached 100%.
func (s TransferState) Completed() bool {
	return s.PercentComplete >= 100
}
