package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists pets in PostgreSQL using GORM-mapped columns.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
// Passing a transaction handle scopes every call to that transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type petRecord struct {
	ID          string          `gorm:"primaryKey;column:id;type:uuid"`
	OwnerID     string          `gorm:"column:owner_id;type:uuid;index;not null"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description"`
	Breed       string          `gorm:"column:breed"`
	Age         int             `gorm:"column:age"`
	CategoryID  *string         `gorm:"column:category_id;type:uuid;index"`
	Fee         decimal.Decimal `gorm:"column:fee;type:numeric(12,2);not null;default:0"`
	Status      string          `gorm:"column:status;type:varchar(16);index;not null"`
	Visibility  string          `gorm:"column:visibility;type:varchar(16);not null"`
	AdoptedBy   *string         `gorm:"column:adopted_by;type:uuid"`
	PhotoURLs   pq.StringArray  `gorm:"column:photo_urls;type:text[]"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (petRecord) TableName() string { return "pets" }

func newPetRecord(p *domain.Pet) petRecord {
	return petRecord{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: p.Description,
		Breed:       p.Breed,
		Age:         p.Age,
		CategoryID:  optional(p.CategoryID),
		Fee:         p.Fee,
		Status:      string(p.Status),
		Visibility:  string(p.Visibility),
		AdoptedBy:   optional(p.AdoptedBy),
		PhotoURLs:   copyStringArray(p.PhotoURLs),
	}
}

// Create inserts a new listing.
func (r *Repository) Create(ctx context.Context, pet *domain.Pet) (*ports.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	record := newPetRecord(pet)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return toProjection(&record), nil
}

// Update rewrites the editable columns. The status guard keeps adopted rows immutable
// even when a concurrent adoption committed after the caller read the row.
func (r *Repository) Update(ctx context.Context, pet *domain.Pet) (*ports.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	if pet.Status == domain.StatusAdopted {
		return nil, domain.ErrStatusNotAllowed
	}
	record := newPetRecord(pet)
	result := r.db.WithContext(ctx).Model(&petRecord{}).
		Where("id = ? AND status <> ?", pet.ID, string(domain.StatusAdopted)).
		Updates(map[string]any{
			"name":        record.Name,
			"description": record.Description,
			"breed":       record.Breed,
			"age":         record.Age,
			"category_id": record.CategoryID,
			"fee":         record.Fee,
			"status":      record.Status,
			"visibility":  record.Visibility,
			"photo_urls":  record.PhotoURLs,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, pet.ID); err != nil {
			return nil, err
		}
		return nil, domain.ErrAlreadyAdopted
	}
	return r.GetByID(ctx, pet.ID)
}

// GetByID fetches a pet by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*ports.PetProjection, error) {
	record, err := r.first(ctx, false, id)
	if err != nil {
		return nil, err
	}
	return toProjection(record), nil
}

// GetForUpdate reads the pet holding a row lock until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id string) (*domain.Pet, error) {
	record, err := r.first(ctx, true, id)
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// SetStatus writes the adoption transition. Only the ledger calls it.
func (r *Repository) SetStatus(ctx context.Context, id string, status domain.Status, adoptedBy string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&petRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"adopted_by": optional(adoptedBy),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Delete removes a listing that has not been adopted.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Where("id = ? AND status <> ?", id, string(domain.StatusAdopted)).
		Delete(&petRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrAlreadyAdopted
	}
	return nil
}

// List returns one page of pets matching filter.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) (projection.Page[*ports.PetProjection], error) {
	var page projection.Page[*ports.PetProjection]
	if err := r.ensureDB(); err != nil {
		return page, err
	}
	query := r.db.WithContext(ctx).Model(&petRecord{})
	if filter.OwnerID != "" {
		query = query.Where("pets.owner_id = ?", filter.OwnerID)
	}
	if filter.ListedOnly {
		query = query.Where("pets.status = ? AND pets.visibility = ?",
			string(domain.StatusApproved), string(domain.VisibilityPublic))
	}
	if filter.NameContains != "" {
		query = query.Where("pets.name ILIKE ?", "%"+escapeLike(filter.NameContains)+"%")
	}
	if filter.CategoryID != "" {
		query = query.Where("pets.category_id = ?", filter.CategoryID)
	}
	if filter.FeeLessThan != nil {
		query = query.Where("pets.fee < ?", *filter.FeeLessThan)
	}
	if filter.FeeMoreThan != nil {
		query = query.Where("pets.fee > ?", *filter.FeeMoreThan)
	}
	if filter.Search != "" {
		term := "%" + escapeLike(filter.Search) + "%"
		query = query.
			Joins("LEFT JOIN categories ON categories.id = pets.category_id").
			Where("pets.name ILIKE ? OR pets.breed ILIKE ? OR pets.description ILIKE ? OR categories.name ILIKE ?",
				term, term, term, term)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&page.Total).Error; err != nil {
		return page, err
	}
	pageNum, size := projection.Normalize(filter.Page, filter.PageSize, 10, 0)
	page.Page, page.PageSize = pageNum, size

	var records []petRecord
	if err := query.Select("pets.*").
		Order(orderClause(filter.OrderBy)).
		Order("pets.id").
		Offset(projection.Offset(pageNum, size)).
		Limit(size).
		Find(&records).Error; err != nil {
		return page, err
	}
	page.Items = make([]*ports.PetProjection, 0, len(records))
	for i := range records {
		page.Items = append(page.Items, toProjection(&records[i]))
	}
	return page, nil
}

func (r *Repository) first(ctx context.Context, forUpdate bool, id string) (*petRecord, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record petRecord
	if err := query.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func orderClause(orderBy string) clause.OrderByColumn {
	desc := strings.HasPrefix(orderBy, "-")
	column := "pets.updated_at"
	if strings.TrimPrefix(orderBy, "-") == ports.OrderByFee {
		column = "pets.fee"
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column, Raw: true}, Desc: desc}
}

func toProjection(record *petRecord) *ports.PetProjection {
	return projection.New(record.toDomain(), record.CreatedAt, record.UpdatedAt)
}

func (r *petRecord) toDomain() *domain.Pet {
	pet := &domain.Pet{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Description: r.Description,
		Breed:       r.Breed,
		Age:         r.Age,
		Fee:         r.Fee,
		Status:      domain.Status(r.Status),
		Visibility:  domain.Visibility(r.Visibility),
	}
	if r.CategoryID != nil {
		pet.CategoryID = *r.CategoryID
	}
	if r.AdoptedBy != nil {
		pet.AdoptedBy = *r.AdoptedBy
	}
	if len(r.PhotoURLs) > 0 {
		pet.PhotoURLs = append([]string{}, r.PhotoURLs...)
	}
	return pet
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres repository not configured")
	}
	return nil
}

func copyStringArray(values []string) pq.StringArray {
	if len(values) == 0 {
		return nil
	}
	return pq.StringArray(append([]string{}, values...))
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
