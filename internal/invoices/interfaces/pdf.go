package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	invoices "payroll-cloud/internal/invoices/domain"
)

// BuildInvoicePDF renders an invoice as a single-page PDF.
func BuildInvoicePDF(invoice *invoices.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice %s", invoice.InvoiceNumber))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Employee: %s (%s)", invoice.EmployeeName, invoice.EmployeeID))
	pdf.Ln(5)
	if invoice.Month != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Month: %s", invoice.Month))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Issue Date: %s", invoice.IssueDate))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Due Date: %s", invoice.DueDate))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", invoice.Status))
	pdf.Ln(8)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Rate", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "VAT %", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, item := range invoice.Items {
		pdf.CellFormat(70, 6, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, item.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, item.Rate.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, item.VAT.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, item.Total.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Total (EUR): %s", invoice.Total.StringFixed(2)))
	if invoice.Notes != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "I", 9)
		pdf.Cell(0, 6, invoice.Notes)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
