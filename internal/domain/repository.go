package domain

// FetchRequestRepository defines the interface for request persistence
type FetchRequestRepository interface {
	// Create creates a new request
	Create(req *FetchRequest) error

	// Update updates an existing request
	Update(req *FetchRequest) error

	// Delete deletes a request by ID
	Delete(id string) error

	// FindByID finds a request by ID
	FindByID(id string) (*FetchRequest, error)

	// FindByStatus finds requests by status
	FindByStatus(status FetchStatus) ([]*FetchRequest, error)

	// FindPending finds all unprocessed requests ordered by creation time
	FindPending() ([]*FetchRequest, error)

	// FindAll finds all requests with optional filters
	FindAll(filters map[string]interface{}) ([]*FetchRequest, error)

	// Count returns the total number of requests
	Count() (int64, error)

	// CountByStatus returns the number of requests by status
	CountByStatus(status FetchStatus) (int64, error)

	// GetStats returns request statistics
	GetStats() (*FetchStats, error)
}

// FetchStats represents request history statistics
type FetchStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Active    int64 `json:"active"`
	Delivered int64 `json:"delivered"`
	Rejected  int64 `json:"rejected"`
	Failed    int64 `json:"failed"`
}
