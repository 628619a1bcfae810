package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/application/pos"
	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/pkg/apperror"
	"github.com/dukapos/dukapos-api/pkg/printer"
)

// PrinterService handles receipt formatting and thermal printing. Printing is
// a read-only view of committed transactions; it never mutates the record.
type PrinterService struct {
	printer     printer.Printer
	txRepo      repository.TransactionRepository
	printerType string
	storeName   string
	charWidth   int
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	txRepo repository.TransactionRepository,
	printerType, storeName string,
	charWidth int,
) *PrinterService {
	if storeName == "" {
		storeName = "DukaPOS"
	}
	if charWidth <= 0 {
		charWidth = 32
	}
	return &PrinterService{
		printer:     p,
		txRepo:      txRepo,
		printerType: printerType,
		storeName:   storeName,
		charWidth:   charWidth,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// TestPrint sends a test page to the printer.
// Returns the receipt data so the handler can return it as JSON when printer is disabled.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			StoreName: "PRINTER TEST",
			Address:   "Test Address",
			Phone:     "+254 000 000 000",
		},
		ReceiptNo: "TEST-001",
		Date:      "Test Date",
		Cashier:   "System",
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: 10.00, Total: 10.00},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: 5.00, Total: 10.00},
		},
		SubTotal: 20.00,
		Total:    20.00,
		Paid:     20.00,
	}

	data := s.FormatReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}

	return receipt, nil
}

// PrintSaleReceipt fetches a committed sale (with items) and prints its receipt.
func (s *PrinterService) PrintSaleReceipt(ctx context.Context, txID uuid.UUID) (*entity.Receipt, error) {
	tx, err := s.txRepo.GetWithItems(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	if tx.Type != enum.TxSale {
		return nil, apperror.NewBadRequestError("Only sale receipts can be printed")
	}
	if tx.Status != enum.StatusCommitted {
		return nil, apperror.NewConflictError("Transaction is not committed")
	}

	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			StoreName: s.storeName,
		},
		ReceiptNo:     tx.ID.String()[:8],
		Date:          tx.Date.Format("2006-01-02 15:04"),
		PaymentMethod: string(tx.PaymentMethod),
		Discount:      float64(tx.Discount) / 100,
		Total:         float64(tx.Amount) / 100,
		Paid:          float64(tx.PaidAmount) / 100,
		Due:           float64(tx.BalanceDue) / 100,
	}

	if tx.Customer != nil {
		receipt.Customer = tx.Customer.Name
	}

	var gross int64
	for _, item := range tx.Items {
		line := pos.CartLine{
			Quantity:     item.Quantity,
			UnitPrice:    item.Price,
			Discount:     item.Discount,
			DiscountKind: item.DiscountKind,
		}
		gross += line.Gross()

		ri := entity.ReceiptItem{
			Quantity:  item.Quantity,
			UnitPrice: float64(item.Price) / 100,
			Total:     float64(line.Gross()-line.DiscountAmount()) / 100,
		}
		if item.Product != nil && item.Product.Name != "" {
			ri.Name = item.Product.Name
		} else {
			ri.Name = "Product"
		}
		receipt.Items = append(receipt.Items, ri)
	}
	receipt.SubTotal = float64(gross) / 100

	data := s.FormatReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		log.Printf("Printer error (transaction %s): %v", txID, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}

	return receipt, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func (s *PrinterService) FormatReceipt(r *entity.Receipt) []byte {
	doc := printer.NewDocument(s.charWidth)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.TaxID != "" {
		doc.TextF("Tax ID: %s", r.Header.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Receipt:", r.ReceiptNo).
		KeyValue("Date:", r.Date)

	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	if r.PaymentMethod != "" {
		doc.KeyValue("Payment:", r.PaymentMethod)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, fmt.Sprintf("%.2f", item.Total))
		if item.Quantity > 1 {
			doc.TextF("  @ %.2f each", item.UnitPrice)
		}
	}

	doc.Separator('-')

	doc.KeyValue("Subtotal:", fmt.Sprintf("%.2f", r.SubTotal))
	if r.Discount > 0 {
		doc.KeyValue("Discount:", fmt.Sprintf("-%.2f", r.Discount))
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", fmt.Sprintf("%.2f", r.Total)).
		SetBold(false)

	if r.Paid > 0 {
		doc.KeyValue("Paid:", fmt.Sprintf("%.2f", r.Paid))
	}
	if r.Due > 0 {
		doc.KeyValue("Due:", fmt.Sprintf("%.2f", r.Due))
	}
	if r.Change > 0 {
		doc.KeyValue("Change:", fmt.Sprintf("%.2f", r.Change))
	}

	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you for your business!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		Cut()

	return doc.Bytes()
}
