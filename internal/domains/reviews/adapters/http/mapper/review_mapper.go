package mapper

import (
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// ReviewRequest carries review writes.
type ReviewRequest struct {
	Comments *string `json:"comments"`
	ImageURL *string `json:"image_url"`
}

// Review is the HTTP representation of a review.
type Review struct {
	ID         string    `json:"id"`
	PetID      string    `json:"pet_id"`
	ReviewerID string    `json:"reviewer"`
	Comments   string    `json:"comments"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ReviewPage struct {
	Count    int64    `json:"count"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	HasNext  bool     `json:"has_next"`
	Results  []Review `json:"results"`
}

func (r ReviewRequest) ToInput() types.ReviewInput {
	return types.ReviewInput{Comments: r.Comments, ImageURL: r.ImageURL}
}

func FromProjection(p *ports.ReviewProjection) Review {
	if p == nil || p.Entity == nil {
		return Review{}
	}
	return Review{
		ID:         p.Entity.ID,
		PetID:      p.Entity.PetID,
		ReviewerID: p.Entity.ReviewerID,
		Comments:   p.Entity.Comments,
		ImageURL:   p.Entity.ImageURL,
		CreatedAt:  p.Metadata.CreatedAt,
		UpdatedAt:  p.Metadata.UpdatedAt,
	}
}

func FromPage(page projection.Page[*ports.ReviewProjection]) ReviewPage {
	out := ReviewPage{
		Count:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasNext:  page.HasNext(),
		Results:  make([]Review, 0, len(page.Items)),
	}
	for _, item := range page.Items {
		out.Results = append(out.Results, FromProjection(item))
	}
	return out
}
