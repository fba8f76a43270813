package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists adoptions in PostgreSQL.
// Passing a transaction handle scopes every call to that transaction.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type adoptionRecord struct {
	ID        string          `gorm:"primaryKey;column:id;type:uuid"`
	PetID     string          `gorm:"column:pet_id;type:uuid;not null;index"`
	AdoptedBy string          `gorm:"column:adopted_by;type:uuid;not null;index"`
	Fee       decimal.Decimal `gorm:"column:fee;type:numeric(12,2);not null"`
	Date      time.Time       `gorm:"column:date;not null;index"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func (adoptionRecord) TableName() string { return "adoptions" }

// Create inserts an adoption row inside the caller's transaction.
func (r *Repository) Create(ctx context.Context, adoption *domain.Adoption) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := adoptionRecord{
		ID:        adoption.ID,
		PetID:     adoption.PetID,
		AdoptedBy: adoption.AdoptedBy,
		Fee:       adoption.Fee,
		Date:      adoption.Date,
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *Repository) GetByID(ctx context.Context, petID, id string) (*domain.Adoption, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record adoptionRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ? AND pet_id = ?", id, petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) (projection.Page[*domain.Adoption], error) {
	var page projection.Page[*domain.Adoption]
	if err := r.ensureDB(); err != nil {
		return page, err
	}
	query := r.db.WithContext(ctx).Model(&adoptionRecord{}).Where("pet_id = ?", filter.PetID)
	if filter.AdoptedBy != "" {
		query = query.Where("adopted_by = ?", filter.AdoptedBy)
	}
	if filter.DateAfter != nil {
		query = query.Where("date > ?", *filter.DateAfter)
	}
	if filter.DateBefore != nil {
		query = query.Where("date < ?", *filter.DateBefore)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&page.Total).Error; err != nil {
		return page, err
	}
	pageNum, size := projection.Normalize(filter.Page, filter.PageSize, 10, 0)
	page.Page, page.PageSize = pageNum, size

	column := "date"
	if strings.TrimPrefix(filter.OrderBy, "-") == "id" {
		column = "id"
	}
	var records []adoptionRecord
	if err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: strings.HasPrefix(filter.OrderBy, "-")}).
		Order("id").
		Offset(projection.Offset(pageNum, size)).
		Limit(size).
		Find(&records).Error; err != nil {
		return page, err
	}
	page.Items = make([]*domain.Adoption, 0, len(records))
	for i := range records {
		page.Items = append(page.Items, records[i].toDomain())
	}
	return page, nil
}

func (r adoptionRecord) toDomain() *domain.Adoption {
	return &domain.Adoption{ID: r.ID, PetID: r.PetID, AdoptedBy: r.AdoptedBy, Fee: r.Fee, Date: r.Date.UTC()}
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres adoption repository not configured")
	}
	return nil
}
