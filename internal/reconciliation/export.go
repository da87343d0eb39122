package reconciliation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sharebrasil/portal/internal/shared"
)

const (
	ledgerSheet  = "Conciliação"
	summarySheet = "Resumo"
	brlFormat    = `"R$" #,##0.00`
)

var clientHeaders = []string{"Relatório", "Cliente", "Aeronave", "Valor", "Status", "Enviado em", "Pago em", "Criado em"}

// ExportClientXLSX writes the client ledger, optionally filtered by status, as a workbook.
func (s *Service) ExportClientXLSX(ctx context.Context, w io.Writer, status string) error {
	ledger, err := s.ListClient(ctx, status)
	if err != nil {
		return err
	}
	f, err := buildClientWorkbook(ledger)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

func buildClientWorkbook(ledger ClientLedger) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(brlFormat)})
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	header := make([]any, len(clientHeaders))
	for i, h := range clientHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ledgerSheet, "A1", "H1", bold); err != nil {
		return nil, err
	}
	for i, e := range ledger.Entries {
		amount, _ := e.Amount.Round(2).Float64()
		row := []any{e.ReportNumber, e.ClientName, e.AircraftRegistration, amount, e.Status,
			formatDay(e.SentDate), formatDay(e.PaidDate), e.CreatedAt.Format("02/01/2006")}
		if err := f.SetSheetRow(ledgerSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}
	if n := len(ledger.Entries); n > 0 {
		if err := f.SetCellStyle(ledgerSheet, "D2", fmt.Sprintf("D%d", n+1), money); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(ledgerSheet, "A", "B", 36); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	rows := [][]any{
		{"Status", "Valor"},
		{"Pago", shared.FormatBRL(ledger.Summary.Pago)},
		{"Enviado", shared.FormatBRL(ledger.Summary.Enviado)},
		{"Pendente", shared.FormatBRL(ledger.Summary.Pendente)},
		{"Total", shared.FormatBRL(ledger.Summary.Total)},
	}
	for i := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &rows[i]); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", bold); err != nil {
		return nil, err
	}
	return f, nil
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

func strPtr(s string) *string { return &s }
