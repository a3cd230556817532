package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aruna-lab/redoxsim/internal/topology"
)

var transitionHeader = []string{
	"id", "proteoform", "oxidation_level", "percent_oxidation", "structure",
	"allowed", "barred", "k_minus", "k_plus", "degree",
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}

// WriteTransitionsCSV writes the per-state transition table.
func WriteTransitionsCSV(w io.Writer, records []topology.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(transitionHeader); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.ID),
			rec.Label,
			strconv.Itoa(rec.K),
			strconv.FormatFloat(rec.PercentOx, 'f', 2, 64),
			rec.Structure,
			joinIDs(rec.Allowed),
			joinIDs(rec.Barred),
			strconv.Itoa(rec.KMinus),
			strconv.Itoa(rec.KPlus),
			strconv.Itoa(rec.Degree),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return cw.Error()
}

// WriteTransitionsCSVFile is WriteTransitionsCSV to a file path.
func WriteTransitionsCSVFile(path string, records []topology.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteTransitionsCSV(f, records)
}

// WriteTransitionsXLSX writes the transition table as a styled workbook.
func WriteTransitionsXLSX(path string, records []topology.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transitions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for col, name := range transitionHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(transitionHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", endHeader, headerStyle); err != nil {
		return err
	}

	for i, rec := range records {
		row := i + 2
		values := []any{
			rec.ID, rec.Label, rec.K, rec.PercentOx, rec.Structure,
			joinIDs(rec.Allowed), joinIDs(rec.Barred),
			rec.KMinus, rec.KPlus, rec.Degree,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheet, "B", "B", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "E", "G", 28); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("store: saving transition workbook: %w", err)
	}
	return nil
}
