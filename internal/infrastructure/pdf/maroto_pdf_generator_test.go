package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/infrastructure/pdf"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "Rp 50.000", pdf.FormatMoney("IDR", decimal.NewFromInt(50000)))
	assert.Equal(t, "Rp 1.250.000", pdf.FormatMoney("", decimal.NewFromInt(1250000)))
	assert.Equal(t, "Rp 500", pdf.FormatMoney("IDR", decimal.NewFromInt(500)))
}

func TestPaymentReference(t *testing.T) {
	inv := &entity.Invoice{ID: "0f1e2d3c-aaaa-bbbb", ResidentID: "abc", BillingPeriod: "2024-03"}
	assert.Equal(t, "IURAN/2024-03/ABC/0F1E2D3C", pdf.PaymentReference(inv))
}

func TestGenerateInvoicePDF(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator()
	out, err := g.GenerateInvoicePDF(context.Background(), appbilling.InvoicePDF{
		Invoice: &entity.Invoice{
			ID:            "7b0c4f7e-1111-2222-3333-444455556666",
			ResidentID:    "A",
			Amount:        decimal.NewFromInt(50000),
			BillingPeriod: "2024-03",
			DueAt:         time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Status:        entity.InvoiceStatusPending,
		},
		Iuran:    &entity.Iuran{Name: "Iuran Keamanan"},
		Cluster:  &entity.Cluster{Name: "Griya Asri"},
		Resident: &entity.Profile{Name: "Budi", Block: "C", HouseNumber: "12"},
		Currency: "IDR",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDF_DatosIncompletos(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), appbilling.InvoicePDF{})
	assert.Error(t, err)
}
