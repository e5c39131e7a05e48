// Package export writes trades and reports to portable formats.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"tradejournal/internal/analytics"
	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/models"
)

// ErrNoData is returned when there is nothing to export.
var ErrNoData = apperrors.ErrNoData

// utf8BOM lets spreadsheet tools detect UTF-8 so CJK labels display.
const utf8BOM = "\uFEFF"

// WriteTradesCSV writes one row per trade with a header row. The image
// column holds the reference only.
func WriteTradesCSV(w io.Writer, trades []models.Trade) error {
	if len(trades) == 0 {
		return ErrNoData
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return apperrors.Wrap(err, "failed to write csv")
	}

	rows := make([]models.Trade, len(trades))
	copy(rows, trades)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return apperrors.Wrap(err, "failed to write csv")
	}
	return nil
}

// CSVFileName returns the export file name for a moment in time.
func CSVFileName(now time.Time) string {
	return fmt.Sprintf("export_%d.csv", now.Unix())
}

// TradesCSVFile writes trades to dir/export_<unix>.csv and returns the
// path. No file is created when trades is empty.
func TradesCSVFile(dir string, trades []models.Trade, now time.Time) (string, error) {
	if len(trades) == 0 {
		return "", ErrNoData
	}

	path := filepath.Join(dir, CSVFileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to create export file")
	}

	bw := bufio.NewWriter(f)
	if err := WriteTradesCSV(bw, trades); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return "", apperrors.Wrap(err, "failed to write export file")
	}
	if err := f.Close(); err != nil {
		return "", apperrors.Wrap(err, "failed to close export file")
	}
	return path, nil
}

// WriteReportYAML writes the full analytics report as YAML.
func WriteReportYAML(w io.Writer, report *analytics.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return apperrors.Wrap(err, "failed to encode report")
	}
	return enc.Close()
}
