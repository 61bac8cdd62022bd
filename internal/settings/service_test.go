package settings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:settings_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.PaymentSettings{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestPublicBeforeFirstSave(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	got, err := svc.Public(context.Background())
	if err != nil {
		t.Fatalf("Public: %v", err)
	}
	if got.IBAN != "" || got.AccountHolder != "" {
		t.Fatalf("expected empty settings, got %+v", got)
	}
}

func TestUpdateNormalizesAndUpserts(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Update(ctx, &models.PaymentSettings{
		AccountHolder: "GastroVan GmbH",
		IBAN:          "de89 3704 0044 0532 0130 00",
		BIC:           "cobadeff",
		BankName:      "Commerzbank",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if saved.IBAN != "DE89370400440532013000" {
		t.Fatalf("expected normalized iban, got %q", saved.IBAN)
	}
	if saved.BIC != "COBADEFF" {
		t.Fatalf("expected uppercased bic, got %q", saved.BIC)
	}

	// second update must reuse the row, not add one
	again, err := svc.Update(ctx, &models.PaymentSettings{
		AccountHolder: "GastroVan GmbH",
		IBAN:          "NL91ABNA0417164300",
		BIC:           "ABNANL2A",
		BankName:      "ABN AMRO",
	})
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if again.ID != saved.ID {
		t.Fatal("expected the settings row to be upserted in place")
	}

	public, err := svc.Public(ctx)
	if err != nil {
		t.Fatalf("Public: %v", err)
	}
	if public.IBAN != "NL91ABNA0417164300" {
		t.Fatalf("expected latest iban, got %q", public.IBAN)
	}
}

func TestUpdateRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	badEmail := "not-an-email"

	cases := []struct {
		name string
		row  *models.PaymentSettings
	}{
		{"bad iban checksum", &models.PaymentSettings{IBAN: "DE89370400440532013001"}},
		{"bad bic length", &models.PaymentSettings{BIC: "ABC"}},
		{"bad paypal email", &models.PaymentSettings{PayPalEmail: &badEmail}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tc.row)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
