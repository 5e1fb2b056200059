package infra

// pdf.go — Cierre de turno report generation using go-pdf/fpdf.
// Produces an A5 summary of the arqueo: opening floats, per-method sales,
// expected vs declared cash per currency, and the variance classification.
// The output file is saved to storagePath/cierre_{turno}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// CierreReporte carries everything the PDF needs; the caller assembles it
// from the closed turno so this package stays free of model/repo imports.
type CierreReporte struct {
	TurnoID       string
	CajaNombre    string
	Operador      string
	CerradoPor    string
	CierreForzado bool
	AbiertoAt     time.Time
	CerradoAt     time.Time
	Arqueo        dto.ArqueoSnapshot
	Observaciones string
}

// GenerateCierrePDF writes the closing report and returns its path.
func GenerateCierrePDF(rep CierreReporte, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("cierre_%s.pdf", rep.TurnoID))

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Cierre de turno", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Caja: %s", rep.CajaNombre), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Operador: %s", rep.Operador), "", 1, "L", false, 0, "")
	if rep.CierreForzado {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("CIERRE FORZADO por %s", rep.CerradoPor), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Apertura: %s", rep.AbiertoAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Cierre:   %s", rep.CerradoAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	writeMoneda(pdf, "Soles (PEN)", rep.Arqueo.PEN, rep.Arqueo.VentasPEN)
	writeMoneda(pdf, "Dólares (USD)", rep.Arqueo.USD, rep.Arqueo.VentasUSD)

	if rep.Observaciones != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(0, 4, "Observaciones: "+rep.Observaciones, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func writeMoneda(pdf *fpdf.Fpdf, titulo string, arq dto.ArqueoMoneda, ventas dto.VentasPorMetodo) {
	// Skip the USD block entirely when the drawer never carried dollars.
	if titulo != "Soles (PEN)" && arq.Esperado.IsZero() && arq.Apertura.IsZero() && ventas.Total.IsZero() {
		return
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, titulo, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)

	row := func(label string, v decimal.Decimal) {
		pdf.CellFormat(60, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, v.StringFixed(2), "", 1, "R", false, 0, "")
	}

	row("Apertura", arq.Apertura)
	row("Pagos en efectivo", arq.PagosEfectivo)
	row("Ingresos manuales", arq.Ingresos)
	row("Egresos manuales", arq.Egresos)
	pdf.SetFont("Helvetica", "B", 9)
	row("Efectivo esperado", arq.Esperado)
	pdf.SetFont("Helvetica", "", 9)
	if arq.Declarado != nil {
		row("Efectivo declarado", *arq.Declarado)
	}
	if arq.Desvio != nil && arq.Clasificacion != nil {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(60, 5, "Desvío", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("%s (%s)", arq.Desvio.StringFixed(2), *arq.Clasificacion), "", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.Ln(1)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 4, fmt.Sprintf("Ventas del turno: efectivo %s · tarjeta %s · yape %s · plin %s · transf. %s · total %s",
		ventas.Efectivo.StringFixed(2), ventas.Tarjeta.StringFixed(2), ventas.Yape.StringFixed(2),
		ventas.Plin.StringFixed(2), ventas.Transferencia.StringFixed(2), ventas.Total.StringFixed(2)),
		"", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.Ln(2)
}
