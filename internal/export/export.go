// Package export writes classified area records to the supported output
// formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/segeodata/deso-cli/internal/model"
)

// Format identifies an output format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a format name from config or flags.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatTable:
		return FormatTable, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("export: unsupported format %q (want csv, table, or xlsx)", s)
	}
}

var columns = []string{
	"deso", "year", "kommun", "lan",
	"education_pct", "low_income_pct", "unemployment_pct",
	"index", "area_type", "label",
}

// Write renders records in the given format. XLSX output is buffered in
// memory by the workbook writer, so w can be any destination.
func Write(w io.Writer, format Format, records []model.ClassifiedRecord) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatTable:
		return writeTable(w, records)
	case FormatXLSX:
		return writeXLSX(w, records)
	default:
		return eris.Errorf("export: unsupported format %q", format)
	}
}

// WriteFile renders records to a file, or to stdout when path is empty.
func WriteFile(path string, format Format, records []model.ClassifiedRecord) error {
	if path == "" {
		return Write(os.Stdout, format, records)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := Write(f, format, records); err != nil {
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

func recordRow(r model.ClassifiedRecord) []string {
	return []string{
		r.Area,
		fmt.Sprintf("%d", r.Year),
		r.Kommun,
		r.Lan,
		fmt.Sprintf("%.2f", r.EducationPct),
		fmt.Sprintf("%.2f", r.LowIncomePct),
		fmt.Sprintf("%.2f", r.UnemploymentPct),
		fmt.Sprintf("%.2f", r.Index),
		fmt.Sprintf("%d", r.AreaType),
		r.Label,
	}
}

func writeCSV(w io.Writer, records []model.ClassifiedRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return eris.Wrap(err, "export: write CSV header")
	}
	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return eris.Wrap(err, "export: write CSV row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush CSV")
}

func writeTable(w io.Writer, records []model.ClassifiedRecord) error {
	header := fmt.Sprintf("%-10s %-5s %-16s %7s %7s %7s %7s %5s %s\n",
		"DeSO", "Year", "Kommun", "Edu%", "LowInc%", "Unemp%", "Index", "Type", "Label")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "export: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 95)); err != nil {
		return eris.Wrap(err, "export: write table separator")
	}

	for _, r := range records {
		kommun := r.Kommun
		if len([]rune(kommun)) > 16 {
			kommun = string([]rune(kommun)[:13]) + "..."
		}
		line := fmt.Sprintf("%-10s %-5d %-16s %7.2f %7.2f %7.2f %7.2f %5d %s\n",
			r.Area, r.Year, kommun,
			r.EducationPct, r.LowIncomePct, r.UnemploymentPct,
			r.Index, r.AreaType, r.Label)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "export: write table row")
		}
	}
	return nil
}

func writeXLSX(w io.Writer, records []model.ClassifiedRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Areas")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, col := range columns {
		headerRow.AddCell().SetString(col)
	}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Area)
		row.AddCell().SetInt(r.Year)
		row.AddCell().SetString(r.Kommun)
		row.AddCell().SetString(r.Lan)
		row.AddCell().SetFloatWithFormat(r.EducationPct, "0.00")
		row.AddCell().SetFloatWithFormat(r.LowIncomePct, "0.00")
		row.AddCell().SetFloatWithFormat(r.UnemploymentPct, "0.00")
		row.AddCell().SetFloatWithFormat(r.Index, "0.00")
		row.AddCell().SetInt(int(r.AreaType))
		row.AddCell().SetString(r.Label)
	}

	return eris.Wrap(f.Write(w), "export: write workbook")
}
