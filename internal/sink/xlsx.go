package sink

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // puzzle images are stored as JPEG
	"os"
	"path/filepath"
	"sync"

	"github.com/ppiankov/laytoneval/internal/model"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName      = "Sheet1"
	thumbnailPx    = 200
	pixelsPerPoint = 4.0 / 3.0
)

// Columns is the annotation sheet layout
var Columns = []string{
	"id", "category", "description", "img", "url", "picarats",
	"first_hint", "second_hint", "third_hint", "special_hint", "solution",
}

// columnPixels are the display widths of the wide text columns
var columnPixels = map[string]float64{
	"B": 150,
	"C": 1100,
	"D": thumbnailPx,
	"E": 400,
	"G": 900, "H": 900, "I": 900, "J": 900,
	"K": 1000,
}

// XLSXSink builds the annotation spreadsheet in memory and saves it on Close.
// The img column shows the puzzle image scaled to a 200 px square.
type XLSXSink struct {
	mu     sync.Mutex
	path   string
	f      *excelize.File
	row    int
	err    error
	logger zerolog.Logger
}

// NewXLSX starts a workbook that will be saved to path
func NewXLSX(path string, logger zerolog.Logger) *XLSXSink {
	s := &XLSXSink{path: path, f: excelize.NewFile(), row: 1, logger: logger}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	s.err = s.f.SetSheetRow(sheetName, "A1", &header)

	for col, px := range columnPixels {
		if err := s.f.SetColWidth(sheetName, col, col, px/7); err != nil && s.err == nil {
			s.err = err
		}
	}
	return s
}

// Write appends one row
func (s *XLSXSink) Write(ctx context.Context, rec *model.PuzzleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.row++

	var picarats interface{}
	if rec.Picarats != nil {
		picarats = *rec.Picarats
	}
	values := []interface{}{
		str(rec.ID), str(rec.Category), str(rec.Description), str(rec.ImagePath), rec.URL, picarats,
		str(rec.FirstHint), str(rec.SecondHint), str(rec.ThirdHint), str(rec.SpecialHint), str(rec.Solution),
	}

	first, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(sheetName, first, &values); err != nil {
		return fmt.Errorf("xlsx row %d: %w", s.row, err)
	}

	urlCell, _ := excelize.CoordinatesToCellName(5, s.row)
	if err := s.f.SetCellHyperLink(sheetName, urlCell, rec.URL, "External"); err != nil {
		return fmt.Errorf("xlsx link %d: %w", s.row, err)
	}

	// The row is already in the sheet, so a bad image only costs the thumbnail.
	if rec.ImagePath != nil {
		imgCell, _ := excelize.CoordinatesToCellName(4, s.row)
		if err := s.addThumbnail(imgCell, *rec.ImagePath); err != nil {
			s.logger.Warn().Err(err).Str("document", rec.DocumentID).Str("image", *rec.ImagePath).Msg("thumbnail skipped")
		}
	}
	return nil
}

func (s *XLSXSink) addThumbnail(cell, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	cfg, _, err := image.DecodeConfig(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return errors.New("empty image")
	}

	if err := s.f.AddPicture(sheetName, cell, path, &excelize.GraphicOptions{
		ScaleX: float64(thumbnailPx) / float64(cfg.Width),
		ScaleY: float64(thumbnailPx) / float64(cfg.Height),
	}); err != nil {
		return err
	}
	return s.f.SetRowHeight(sheetName, s.row, thumbnailPx/pixelsPerPoint)
}

// Close saves the workbook
func (s *XLSXSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Join(err, s.f.Close())
	}
	if err := s.f.SaveAs(s.path); err != nil {
		return errors.Join(fmt.Errorf("save %s: %w", s.path, err), s.f.Close())
	}
	return s.f.Close()
}
