package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the owner of wallets, portfolios and investments
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	Email        string    `json:"email" gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	FirstName    string    `json:"first_name" gorm:"column:first_name;type:varchar(100)"`
	LastName     string    `json:"last_name" gorm:"column:last_name;type:varchar(100)"`
	KYCCompleted bool      `json:"kyc_completed" gorm:"column:kyc_completed;not null;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// FullName joins first and last name for notifications
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Wallet holds a user's spendable balance
type Wallet struct {
	ID        string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID    string          `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;uniqueIndex"`
	Balance   decimal.Decimal `json:"balance" gorm:"column:balance;type:decimal(30,8);not null;default:0"`
	Currency  string          `json:"currency" gorm:"column:currency;type:varchar(10);not null;default:'USD'"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for the Wallet model
func (Wallet) TableName() string {
	return "wallets"
}

// Covers reports whether the wallet can pay amount
func (w *Wallet) Covers(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}
