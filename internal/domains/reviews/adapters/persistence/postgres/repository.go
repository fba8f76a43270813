package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/reviews/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists reviews in PostgreSQL.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type reviewRecord struct {
	ID         string    `gorm:"primaryKey;column:id;type:uuid"`
	PetID      string    `gorm:"column:pet_id;type:uuid;not null;uniqueIndex:ux_reviews_pet_reviewer"`
	ReviewerID string    `gorm:"column:reviewer_id;type:uuid;not null;uniqueIndex:ux_reviews_pet_reviewer"`
	Comments   string    `gorm:"column:comments;type:text;not null"`
	ImageURL   string    `gorm:"column:image_url"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (reviewRecord) TableName() string { return "reviews" }

// Create inserts the review; the composite unique index rejects a second review by the same user.
func (r *Repository) Create(ctx context.Context, review *domain.Review) (*ports.ReviewProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := reviewRecord{
		ID:         review.ID,
		PetID:      review.PetID,
		ReviewerID: review.ReviewerID,
		Comments:   review.Comments,
		ImageURL:   review.ImageURL,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrAlreadyReviewed
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) Update(ctx context.Context, review *domain.Review) (*ports.ReviewProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Model(&reviewRecord{}).
		Where("id = ? AND pet_id = ?", review.ID, review.PetID).
		Updates(map[string]any{
			"comments":   review.Comments,
			"image_url":  review.ImageURL,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, review.PetID, review.ID)
}

func (r *Repository) GetByID(ctx context.Context, petID, id string) (*ports.ReviewProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record reviewRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ? AND pet_id = ?", id, petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) Delete(ctx context.Context, petID, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&reviewRecord{}, "id = ? AND pet_id = ?", id, petID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) (projection.Page[*ports.ReviewProjection], error) {
	var page projection.Page[*ports.ReviewProjection]
	if err := r.ensureDB(); err != nil {
		return page, err
	}
	query := r.db.WithContext(ctx).Model(&reviewRecord{}).Where("pet_id = ?", filter.PetID)
	if filter.ReviewerID != "" {
		query = query.Where("reviewer_id = ?", filter.ReviewerID)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&page.Total).Error; err != nil {
		return page, err
	}
	pageNum, size := projection.Normalize(filter.Page, filter.PageSize, 10, 0)
	page.Page, page.PageSize = pageNum, size

	var records []reviewRecord
	if err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "updated_at"}, Desc: strings.HasPrefix(filter.OrderBy, "-")}).
		Order("id").
		Offset(projection.Offset(pageNum, size)).
		Limit(size).
		Find(&records).Error; err != nil {
		return page, err
	}
	page.Items = make([]*ports.ReviewProjection, 0, len(records))
	for i := range records {
		page.Items = append(page.Items, records[i].toProjection())
	}
	return page, nil
}

func (r reviewRecord) toProjection() *ports.ReviewProjection {
	review := &domain.Review{
		ID:         r.ID,
		PetID:      r.PetID,
		ReviewerID: r.ReviewerID,
		Comments:   r.Comments,
		ImageURL:   r.ImageURL,
	}
	return projection.New(review, r.CreatedAt, r.UpdatedAt)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres review repository not configured")
	}
	return nil
}
