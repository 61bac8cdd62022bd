package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
)

// Repository stores the single payment settings row.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find returns the settings row, or gorm.ErrRecordNotFound before first
// save.
func (r *Repository) Find(ctx context.Context) (*models.PaymentSettings, error) {
	var row models.PaymentSettings
	if err := r.db.WithContext(ctx).Order("updated_at DESC").First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Save upserts the settings row.
func (r *Repository) Save(ctx context.Context, row *models.PaymentSettings) (*models.PaymentSettings, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

type settingsRepo interface {
	Find(ctx context.Context) (*models.PaymentSettings, error)
	Save(ctx context.Context, row *models.PaymentSettings) (*models.PaymentSettings, error)
}

// PublicSettings is the customer-facing slice of payment settings; PayPal
// credentials never leave the back office.
type PublicSettings struct {
	AccountHolder string  `json:"account_holder"`
	IBAN          string  `json:"iban"`
	BIC           string  `json:"bic"`
	BankName      string  `json:"bank_name"`
	PayPalEmail   *string `json:"paypal_email,omitempty"`
}

// Service exposes payment settings for the booking wizard and the back
// office.
type Service interface {
	Public(ctx context.Context) (*PublicSettings, error)
	Get(ctx context.Context) (*models.PaymentSettings, error)
	Update(ctx context.Context, row *models.PaymentSettings) (*models.PaymentSettings, error)
}

type service struct {
	repo settingsRepo
}

func NewService(repo settingsRepo) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// Public returns the fields shown during the payment step. Empty settings
// are returned as an empty struct rather than an error so the wizard can
// render before the back office is configured.
func (s *service) Public(ctx context.Context) (*PublicSettings, error) {
	row, err := s.find(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return &PublicSettings{}, nil
	}
	return &PublicSettings{
		AccountHolder: row.AccountHolder,
		IBAN:          row.IBAN,
		BIC:           row.BIC,
		BankName:      row.BankName,
		PayPalEmail:   row.PayPalEmail,
	}, nil
}

func (s *service) Get(ctx context.Context) (*models.PaymentSettings, error) {
	row, err := s.find(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return &models.PaymentSettings{}, nil
	}
	return row, nil
}

// Update validates and saves payment settings. The IBAN checksum is
// rejected here so a typo never reaches a customer's transfer screen.
func (s *service) Update(ctx context.Context, row *models.PaymentSettings) (*models.PaymentSettings, error) {
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settings payload required")
	}
	if iban := strings.TrimSpace(row.IBAN); iban != "" {
		if err := ValidateIBAN(iban); err != nil {
			return nil, err
		}
		row.IBAN = NormalizeIBAN(iban)
	}
	if bic := strings.TrimSpace(row.BIC); bic != "" {
		if len(bic) != 8 && len(bic) != 11 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bic must be 8 or 11 characters")
		}
		row.BIC = strings.ToUpper(bic)
	}
	if row.PayPalEmail != nil {
		email := strings.TrimSpace(*row.PayPalEmail)
		if email != "" && !strings.Contains(email, "@") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "paypal email is invalid")
		}
	}

	existing, err := s.find(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		row.ID = existing.ID
	}

	saved, err := s.repo.Save(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving payment settings")
	}
	return saved, nil
}

func (s *service) find(ctx context.Context) (*models.PaymentSettings, error) {
	row, err := s.repo.Find(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment settings")
	}
	return row, nil
}
