package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateFilename is the download name without extension.
const TemplateFilename = "soru-sablonu"

var templateRows = [][]string{
	{"Türkiye'nin başkenti neresidir?", "MULTIPLE_CHOICE", "A", "10", "Ankara", "İstanbul", "İzmir", "Bursa"},
	{"Node.js bir programlama dili midir?", "TRUE_FALSE", "Yanlış", "5", "", "", "", ""},
	{"JavaScript'te değişken tanımlamak için hangi anahtar kelime kullanılır?", "SHORT_ANSWER", "var", "10", "", "", "", ""},
	{"React'in avantajlarını açıklayınız.", "ESSAY", "Manuel değerlendirme gerekir", "20", "", "", "", ""},
}

// WriteTemplateCSV writes the blank import template as UTF-8 CSV with a BOM
// so spreadsheet programs detect the encoding.
func WriteTemplateCSV(w io.Writer) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(TemplateColumns); err != nil {
		return err
	}
	if err := cw.WriteAll(templateRows); err != nil {
		return fmt.Errorf("write csv template: %w", err)
	}
	return nil
}

// WriteTemplateXLSX writes the blank import template as a workbook.
func WriteTemplateXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sorular"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(TemplateColumns))
	for i, c := range TemplateColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range templateRows {
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+FirstDataRow)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+FirstDataRow, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 60); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx template: %w", err)
	}
	return nil
}
