package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const sampleSnapshot = "\ufeffSetor;CodigoRevendedor;NomeRevendedora;CicloFaturamento;CodigoProduto;NomeProduto;QuantidadeItens;ValorPraticado;Tipo\n" +
	"14210 FVC - 13706 - A - ALCINA MARIA 1;R1;Ana;01/2026;P1;Perfume;2;1.234,56;Venda\n" +
	"FVC - 13706 - A - ALCINA MARIA 1;R2;Bia;01/2026;P2;Creme;abc;50,5; VENDA \n" +
	"\n" +
	"Setor inexistente;R3;Cris;01/2026;P3;Batom;1;10,00;Venda\n" +
	"14210 FVC;;Sem Codigo;01/2026;P4;Sabonete;1;10,00;Venda\n" +
	"14210 FVC;R1;Ana;02/2026;P5;Kit;1;sem valor;Devolucao\n"

func TestSnapshotParser_ParseText(t *testing.T) {
	t.Parallel()

	p := NewSnapshotParser(nil)
	records, report, err := p.ParseText(strings.NewReader(sampleSnapshot))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if report.Delimiter != ";" {
		t.Fatalf("unexpected delimiter: %q", report.Delimiter)
	}
	if len(records) != 3 {
		t.Fatalf("unexpected records: %d", len(records))
	}
	if report.TotalRows != 5 || report.KeptRows != 3 || report.DroppedNoSector != 1 || report.DroppedNoReseller != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.UncleanAmounts != 1 {
		t.Fatalf("unexpected unclean amounts: %d", report.UncleanAmounts)
	}

	first := records[0]
	if first.SectorCode != "14210" || first.ResellerCode != "R1" || first.ItemQuantity != 2 || first.Kind != "venda" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if !first.Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("unexpected amount: %s", first.Amount)
	}

	second := records[1]
	if second.SectorCode != "14210" {
		t.Fatalf("sector should resolve through the table, got %q", second.SectorCode)
	}
	if second.ItemQuantity != 1 || second.Kind != "venda" {
		t.Fatalf("unexpected second record: %+v", second)
	}

	if records[2].Kind != "devolucao" || !records[2].Amount.IsZero() {
		t.Fatalf("unexpected third record: %+v", records[2])
	}
}

func TestSnapshotParser_HeaderAliases(t *testing.T) {
	t.Parallel()

	text := "SETOR,Código Revendedor,Nome Revendedora,Ciclo Faturamento,Quantidade Itens,Valor Praticado,TIPO\n" +
		"\"14210 FVC, loja\",R9,Dora,01/2026,3,\"1,234.50\",venda\n"

	records, report, err := NewSnapshotParser(nil).ParseText(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("unexpected records: %d report=%+v", len(records), report)
	}
	rec := records[0]
	if rec.ResellerCode != "R9" || rec.ResellerName != "Dora" || rec.BillingCycle != "01/2026" || rec.ItemQuantity != 3 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.Amount.Equal(decimal.RequireFromString("1234.5")) {
		t.Fatalf("unexpected amount: %s", rec.Amount)
	}
	if len(report.MissingFields) != 2 {
		t.Fatalf("expected productCode/productName missing, got %v", report.MissingFields)
	}
}

func TestSnapshotParser_FirstNonEmptyAliasWins(t *testing.T) {
	t.Parallel()

	text := "Setor|setor|CodigoRevendedor|ValorPraticado|Tipo\n" +
		"|14210 FVC|R1|10|venda\n"

	records, _, err := NewSnapshotParser(nil).ParseText(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1 || records[0].SectorCode != "14210" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestSnapshotParser_EmptyInput(t *testing.T) {
	t.Parallel()

	records, report, err := NewSnapshotParser(nil).ParseText(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 0 || report.TotalRows != 0 {
		t.Fatalf("expected empty result")
	}
}

func TestSnapshotParser_ParseWorkbook(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Setor", "CodigoRevendedor", "NomeRevendedora", "ValorPraticado", "Tipo"},
		{"PLATINA / Penedo /", "R1", "Ana", "100,00", "Venda"},
		{nil, nil, nil, nil, nil},
		{"PLATINA / Penedo /", "R2", "Bia", "50.5", "venda"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	records, report, err := NewSnapshotParser(nil).Parse(bytes.NewReader(buf.Bytes()), FormatWorkbook)
	if err != nil {
		t.Fatalf("parse workbook: %v", err)
	}
	if report.Format != FormatWorkbook || report.SheetName != sheet {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(records) != 2 {
		t.Fatalf("unexpected records: %d", len(records))
	}
	if records[0].SectorCode != "9540" || !records[1].Amount.Equal(decimal.RequireFromString("50.5")) {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestSnapshotParser_ParseWorkbookCurrencyStyledCells(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	sheet := f.GetSheetName(0)
	header := []interface{}{"Setor", "CodigoRevendedor", "NomeRevendedora", "ValorPraticado", "Tipo"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("set header: %v", err)
	}
	row := []interface{}{"PLATINA / Penedo /", "R1", "Ana", 1234.56, "Venda"}
	if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
		t.Fatalf("set row: %v", err)
	}
	numFmt := `"R$" #,##0.00`
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		t.Fatalf("new style: %v", err)
	}
	if err := f.SetCellStyle(sheet, "D2", "D2", style); err != nil {
		t.Fatalf("set style: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	records, _, err := NewSnapshotParser(nil).ParseWorkbook(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse workbook: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("unexpected records: %d", len(records))
	}
	if !records[0].Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("styled amount want=1234.56 got=%s", records[0].Amount)
	}
}
