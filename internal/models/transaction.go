package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFlow is the direction of a wallet movement
type TransactionFlow string

const (
	TransactionFlowDebit  TransactionFlow = "debit"
	TransactionFlowCredit TransactionFlow = "credit"
)

// Transaction purposes
const (
	TransactionPurposeInvestment = "investment"
	TransactionPurposeTopUp      = "top_up"
	TransactionPurposeDividend   = "dividend"
)

// TransactionStatus of a payment record
const (
	TransactionStatusSuccess = "success"
)

// Transaction is the payment record of a single wallet movement
type Transaction struct {
	ID           string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID       string          `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	WalletID     string          `json:"wallet_id" gorm:"column:wallet_id;type:varchar(255);not null;index"`
	Flow         TransactionFlow `json:"flow" gorm:"column:flow;type:varchar(10);not null"`
	Purpose      string          `json:"purpose" gorm:"column:purpose;type:varchar(50);not null;index"`
	Amount       decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(30,8);not null"`
	Status       string          `json:"status" gorm:"column:status;type:varchar(20);not null"`
	ListingID    *string         `json:"listing_id,omitempty" gorm:"column:listing_id;type:varchar(255);index"`
	InvestmentID *string         `json:"investment_id,omitempty" gorm:"column:investment_id;type:varchar(255);index"`
	Reference    string          `json:"reference" gorm:"column:reference;type:varchar(255);not null;uniqueIndex"`
	Note         *string         `json:"note,omitempty" gorm:"column:note;type:text"`
	CreatedAt    time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// Validate validates the transaction data
func (t *Transaction) Validate() error {
	if t.UserID == "" {
		return errors.New("user ID is required")
	}
	if t.WalletID == "" {
		return errors.New("wallet ID is required")
	}
	if t.Flow != TransactionFlowDebit && t.Flow != TransactionFlowCredit {
		return errors.New("flow must be 'debit' or 'credit'")
	}
	if t.Purpose == "" {
		return errors.New("purpose is required")
	}
	if !t.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if t.Reference == "" {
		return errors.New("reference is required")
	}
	return nil
}
