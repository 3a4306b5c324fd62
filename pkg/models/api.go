package models

// SubmitRequest is the body of POST /allocations.
type SubmitRequest struct {
	Directory string  `json:"directory"`
	Filename  string  `json:"filename"`
	Size      float64 `json:"size"`
	Unit      string  `json:"unit"`
	UseSparse bool    `json:"use_sparse"`
}

// SubmitResponse carries the id of an accepted request.
type SubmitResponse struct {
	ID string `json:"id"`
}

// ProgressResponse is the body of GET /progress.
type ProgressResponse struct {
	Events []ProgressEvent `json:"events"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	State   string `json:"state"`
	Busy    bool   `json:"busy"`
	Version string `json:"version,omitempty"`
}

// PathCheckResponse is the body of GET /paths/check.
type PathCheckResponse struct {
	Path    string `json:"path"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// HistoryResponse is the body of GET /allocations.
type HistoryResponse struct {
	Allocations []AllocationRecord `json:"allocations"`
}

// ErrorResponse is returned with every non 2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
