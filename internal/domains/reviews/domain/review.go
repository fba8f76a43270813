package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyComments = errors.New("review comments are required")
	ErrEmptyPet      = errors.New("review must reference a pet")
	ErrEmptyReviewer = errors.New("review must have a reviewer")
)

// Review is a user's comment on a pet listing. A reviewer reviews a pet at most once.
type Review struct {
	ID         string
	PetID      string
	ReviewerID string
	Comments   string
	ImageURL   string
}

func NewReview(id, petID, reviewerID, comments string) (*Review, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, ErrEmptyPet
	}
	if strings.TrimSpace(reviewerID) == "" {
		return nil, ErrEmptyReviewer
	}
	r := &Review{ID: id, PetID: petID, ReviewerID: reviewerID}
	if err := r.Edit(comments); err != nil {
		return nil, err
	}
	return r, nil
}

// Edit replaces the comment text.
func (r *Review) Edit(comments string) error {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return ErrEmptyComments
	}
	r.Comments = comments
	return nil
}

func (r *Review) AttachImage(url string) {
	r.ImageURL = strings.TrimSpace(url)
}

// ManageableBy reports whether userID may edit or delete the review.
func (r *Review) ManageableBy(userID string, moderator bool) bool {
	return moderator || (userID != "" && userID == r.ReviewerID)
}
