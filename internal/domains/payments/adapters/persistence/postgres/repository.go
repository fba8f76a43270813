package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists payment rows in PostgreSQL.
// Passing a transaction handle scopes every call to that transaction.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type paymentRecord struct {
	ID        string          `gorm:"primaryKey;column:id;type:uuid"`
	Token     string          `gorm:"column:transaction_id;size:100;uniqueIndex;not null"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency  string          `gorm:"column:currency;size:8;not null"`
	Method    string          `gorm:"column:payment_method;size:50"`
	Status    string          `gorm:"column:status;size:20;index;not null"`
	Type      string          `gorm:"column:payment_type;size:20;not null"`
	UserID    string          `gorm:"column:user_id;type:uuid;index;not null"`
	PetID     *string         `gorm:"column:pet_id;type:uuid"`
	CreatedAt time.Time       `gorm:"column:created_at;index"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (paymentRecord) TableName() string { return "payment_transactions" }

func (r *Repository) Create(ctx context.Context, tx *domain.Transaction) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := toRecord(tx)
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.first(ctx, false, "id = ?", id)
}

func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.Transaction, error) {
	return r.first(ctx, false, "transaction_id = ?", token)
}

// GetByTokenForUpdate reads the row holding a lock until the surrounding transaction ends.
func (r *Repository) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Transaction, error) {
	return r.first(ctx, true, "transaction_id = ?", token)
}

// Finalize moves a pending row to status. The pending guard makes a replay affect no rows,
// which is reported as domain.ErrAlreadyFinalized.
func (r *Repository) Finalize(ctx context.Context, token string, status domain.Status, method string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	updates := map[string]any{
		"status":     string(status),
		"updated_at": gorm.Expr("NOW()"),
	}
	if method = strings.TrimSpace(method); method != "" {
		updates["payment_method"] = method
	}
	result := r.db.WithContext(ctx).Model(&paymentRecord{}).
		Where("transaction_id = ? AND status = ?", token, string(domain.StatusPending)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByToken(ctx, token); err != nil {
			return err
		}
		return domain.ErrAlreadyFinalized
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) (projection.Page[*domain.Transaction], error) {
	var page projection.Page[*domain.Transaction]
	if err := r.ensureDB(); err != nil {
		return page, err
	}
	query := r.db.WithContext(ctx).Model(&paymentRecord{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Token != "" {
		query = query.Where("transaction_id = ?", filter.Token)
	}
	if filter.Method != "" {
		query = query.Where("payment_method ILIKE ?", "%"+filter.Method+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PetID != "" {
		query = query.Where("pet_id = ?", filter.PetID)
	}
	if filter.Type != "" {
		query = query.Where("payment_type = ?", string(filter.Type))
	}
	if filter.Search != "" {
		pets := r.db.Table("pets").Select("id").Where("name ILIKE ?", "%"+filter.Search+"%")
		query = query.Where("pet_id IN (?)", pets)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&page.Total).Error; err != nil {
		return page, err
	}
	pageNum, size := projection.Normalize(filter.Page, filter.PageSize, 10, 0)
	page.Page, page.PageSize = pageNum, size

	column := "created_at"
	if strings.TrimPrefix(filter.OrderBy, "-") == ports.OrderByAmount {
		column = "amount"
	}
	var records []paymentRecord
	if err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: strings.HasPrefix(filter.OrderBy, "-")}).
		Order("id").
		Offset(projection.Offset(pageNum, size)).
		Limit(size).
		Find(&records).Error; err != nil {
		return page, err
	}
	page.Items = make([]*domain.Transaction, 0, len(records))
	for i := range records {
		page.Items = append(page.Items, records[i].toDomain())
	}
	return page, nil
}

func (r *Repository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(domain.StatusPending), cutoff).
		Order("created_at")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []paymentRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Transaction, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out, nil
}

func (r *Repository) first(ctx context.Context, forUpdate bool, cond string, args ...any) (*domain.Transaction, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record paymentRecord
	if err := query.First(&record, append([]any{cond}, args...)...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres payment repository not configured")
	}
	return nil
}

func toRecord(tx *domain.Transaction) paymentRecord {
	record := paymentRecord{
		ID:        tx.ID,
		Token:     tx.Token,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		Method:    tx.Method,
		Status:    string(tx.Status),
		Type:      string(tx.Type),
		UserID:    tx.UserID,
		CreatedAt: tx.CreatedAt,
		UpdatedAt: tx.UpdatedAt,
	}
	if tx.PetID != "" {
		petID := tx.PetID
		record.PetID = &petID
	}
	return record
}

func (r paymentRecord) toDomain() *domain.Transaction {
	tx := &domain.Transaction{
		ID:        r.ID,
		Token:     r.Token,
		Amount:    r.Amount,
		Currency:  r.Currency,
		Method:    r.Method,
		Status:    domain.Status(r.Status),
		Type:      domain.Type(r.Type),
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.PetID != nil {
		tx.PetID = *r.PetID
	}
	return tx
}
