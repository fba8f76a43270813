package types

// Actor is the caller as seen by the reviews use cases.
type Actor struct {
	UserID    string
	Moderator bool
}

// ReviewInput carries create and partial-update payloads.
type ReviewInput struct {
	Comments *string
	ImageURL *string
}

// ListQuery carries listing options from the transport.
type ListQuery struct {
	ReviewerID string
	Ordering   string
	Page       int
	PageSize   int
}
