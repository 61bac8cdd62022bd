package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentSettings is the single back-office row holding bank transfer and
// PayPal configuration shown during the payment step.
type PaymentSettings struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AccountHolder  string    `gorm:"column:account_holder;not null;default:''"`
	IBAN           string    `gorm:"column:iban;not null;default:''"`
	BIC            string    `gorm:"column:bic;not null;default:''"`
	BankName       string    `gorm:"column:bank_name;not null;default:''"`
	PayPalEmail    *string   `gorm:"column:paypal_email"`
	PayPalClientID *string   `gorm:"column:paypal_client_id"`
	PayPalSecret   *string   `gorm:"column:paypal_secret"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id when the caller has not set one.
func (p *PaymentSettings) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
