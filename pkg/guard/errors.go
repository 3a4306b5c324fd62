package guard

// RejectedError is returned when a path fails the policy.
type RejectedError struct {
	Path   string
	Reason string
}

func (e RejectedError) Error() string {
	return "path rejected: " + e.Reason
}
