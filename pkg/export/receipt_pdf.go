package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ReceiptField is a single labelled line on a receipt.
type ReceiptField struct {
	Label string
	Value string
}

// ReceiptPDF renders payment receipts as simple A5 documents.
type ReceiptPDF struct {
	centerName string
}

// NewReceiptPDF constructs a receipt renderer branded with the center name.
func NewReceiptPDF(centerName string) *ReceiptPDF {
	if centerName == "" {
		centerName = "Tuition Center"
	}
	return &ReceiptPDF{centerName: centerName}
}

// Render produces the PDF bytes for a receipt.
func (r *ReceiptPDF) Render(title string, fields []ReceiptField) ([]byte, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("receipt requires at least one field")
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 14, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 9, r.centerName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, f := range fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 7, f.Label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, f.Value, "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 6, "This receipt was generated electronically.", "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
