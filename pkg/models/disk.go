package models

// DiskUsage represents disk space information for the volume holding a path.
type DiskUsage struct {
	Path           string `json:"path"`
	Volume         string `json:"volume"`
	SpaceUsed      uint64 `json:"space_used"`      // Bytes used
	SpaceAvailable uint64 `json:"space_available"` // Bytes available to the current user
	TotalSpace     uint64 `json:"total_space"`     // Total bytes
}
