package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
// Passing a transaction handle scopes every call to that transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID           string          `gorm:"primaryKey;column:id;type:uuid"`
	Username     string          `gorm:"column:username;uniqueIndex"`
	FirstName    string          `gorm:"column:first_name"`
	LastName     string          `gorm:"column:last_name"`
	Email        string          `gorm:"column:email"`
	Phone        string          `gorm:"column:phone"`
	PasswordHash string          `gorm:"column:password_hash"`
	Staff        bool            `gorm:"column:is_staff"`
	Balance      decimal.Decimal `gorm:"column:balance;type:numeric(12,2);not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Create inserts a new user; the username must be unique.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(&clone)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrUsernameTaken
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// UpdateProfile writes the profile columns only.
func (r *Repository) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	result := r.db.WithContext(ctx).Model(&userRecord{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"email":         user.Email,
			"phone":         user.Phone,
			"password_hash": user.PasswordHash,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

// GetByID fetches a user by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, false, "id = ?", id)
}

// GetByUsername fetches a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, false, "LOWER(username) = LOWER(?)", strings.TrimSpace(username))
}

// GetForUpdate reads a user and holds a row lock until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, true, "id = ?", id)
}

// AddToBalance applies delta to the balance. A debit that would go negative
// affects no rows and reports domain.ErrInsufficientFunds.
func (r *Repository) AddToBalance(ctx context.Context, id string, delta decimal.Decimal) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id)
	if delta.IsNegative() {
		query = query.Where("balance + ? >= 0", delta)
	}
	result := query.Updates(map[string]any{
		"balance":    gorm.Expr("balance + ?", delta),
		"updated_at": gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrInsufficientFunds
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) first(ctx context.Context, forUpdate bool, cond string, args ...any) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record userRecord
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
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(user *domain.User) userRecord {
	return userRecord{
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Phone:        user.Phone,
		PasswordHash: user.PasswordHash,
		Staff:        user.Staff,
		Balance:      user.Balance,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Phone:        r.Phone,
		PasswordHash: r.PasswordHash,
		Staff:        r.Staff,
		Balance:      r.Balance,
	}
}
