package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
)

const SheetName = "Extractions"

// Row is one processed document.
type Row struct {
	Path   string
	Result entity.ExtractionResult
	Err    string // job-level failure, e.g. unreadable file
}

// Service renders batch results as an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Headers returns the column titles in sheet order.
func Headers() []string {
	h := []string{"File", "Success", "Source"}
	h = append(h, constants.AllergenKeys()...)
	h = append(h, constants.NutrientKeys()...)
	return append(h, "Error", "Elapsed (s)")
}

// ResultsXLSX returns the workbook bytes, one row per document.
func (s *Service) ResultsXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_failed", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range Headers() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, ptr(rowValues(r))); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 40)
	_ = f.SetColWidth(SheetName, "B", "M", 10)
	_ = f.SetColWidth(SheetName, "N", "S", 18)
	_ = f.SetColWidth(SheetName, "T", "T", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func rowValues(r Row) []any {
	res := r.Result
	errText := res.Error
	if r.Err != "" {
		errText = r.Err
	}
	vals := []any{filepath.Base(r.Path), res.Success, string(res.Source)}
	for _, k := range constants.AllergenKeys() {
		vals = append(vals, res.Allergens.Get(k))
	}
	for _, k := range constants.NutrientKeys() {
		vals = append(vals, res.Nutrients.Get(k))
	}
	return append(vals, errText, fmt.Sprintf("%.2f", res.ElapsedSeconds))
}

func ptr[T any](v T) *T { return &v }
