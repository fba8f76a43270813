package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for every bounded context. The records below mirror the
// postgres adapters column for column; adapters never automigrate themselves.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&userRecord{},
		&sessionRecord{},
		&categoryRecord{},
		&petRecord{},
		&reviewRecord{},
		&adoptionRecord{},
		&paymentRecord{},
		&idempotencyRecord{},
	); err != nil {
		return err
	}
	// a wallet never goes negative, even if an adapter bug tries
	return db.Exec(`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_users_balance_non_negative') THEN
			ALTER TABLE users ADD CONSTRAINT chk_users_balance_non_negative CHECK (balance >= 0);
		END IF;
	END $$`).Error
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

type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:512"`
	UserID    string    `gorm:"column:user_id;type:uuid;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

type categoryRecord struct {
	ID          string    `gorm:"primaryKey;column:id;type:uuid"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (categoryRecord) TableName() string { return "categories" }

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

type adoptionRecord struct {
	ID        string          `gorm:"primaryKey;column:id;type:uuid"`
	PetID     string          `gorm:"column:pet_id;type:uuid;not null;index"`
	AdoptedBy string          `gorm:"column:adopted_by;type:uuid;not null;index"`
	Fee       decimal.Decimal `gorm:"column:fee;type:numeric(12,2);not null"`
	Date      time.Time       `gorm:"column:date;not null;index"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func (adoptionRecord) TableName() string { return "adoptions" }

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

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	Token       string    `gorm:"column:transaction_id;size:100"`
	RedirectURL string    `gorm:"column:redirect_url"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "payment_idempotency_keys" }
