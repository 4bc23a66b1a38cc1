package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/komplek-api/internal/application/storectx"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/domain/repository"
)

// PDFUseCase genera la representación PDF de una tagihan.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	iuranRepo   repository.IuranRepository
	profileRepo repository.ProfileRepository
	generator   InvoicePDFGenerator
	currency    string
	timeout     storectx.Timeout
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	iuranRepo repository.IuranRepository,
	profileRepo repository.ProfileRepository,
	generator InvoicePDFGenerator,
	currency string,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		iuranRepo:   iuranRepo,
		profileRepo: profileRepo,
		generator:   generator,
		currency:    currency,
	}
}

// WithStoreTimeout acota las lecturas del store.
func (uc *PDFUseCase) WithStoreTimeout(d time.Duration) *PDFUseCase {
	uc.timeout = storectx.Timeout(d)
	return uc
}

// DownloadInvoicePDF recupera la tagihan, su iuran, el cluster y el residente y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la tagihan no existe en el cluster.
//   - domain.ErrNotAuthorized    si el actor no puede ver la tagihan.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, actor permission.Actor, clusterID, invoiceID string) (pdfBytes []byte, filename string, err error) {
	ctx, cancel := uc.timeout.Bound(ctx)
	defer cancel()
	inv, err := uc.invoiceRepo.GetByID(ctx, clusterID, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener tagihan: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if err := permission.Authorize(actor, invoiceRow(inv)); err != nil {
		return nil, "", err
	}

	def, err := uc.iuranRepo.GetByID(ctx, clusterID, inv.IuranID)
	if err != nil || def == nil {
		return nil, "", fmt.Errorf("pdf: obtener iuran: %w", errOrNotFound(err))
	}
	cluster, err := uc.profileRepo.GetCluster(ctx, clusterID)
	if err != nil || cluster == nil {
		return nil, "", fmt.Errorf("pdf: obtener cluster: %w", errOrNotFound(err))
	}
	resident, err := uc.profileRepo.GetByID(ctx, inv.ResidentID)
	if err != nil || resident == nil {
		return nil, "", fmt.Errorf("pdf: obtener residente: %w", errOrNotFound(err))
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, InvoicePDF{
		Invoice:  inv,
		Iuran:    def,
		Cluster:  cluster,
		Resident: resident,
		Currency: uc.currency,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("tagihan_%s_%s.pdf", inv.BillingPeriod, shortID(inv.ID))
	return pdfBytes, filename, nil
}

func errOrNotFound(err error) error {
	if err != nil {
		return err
	}
	return domain.ErrNotFound
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
