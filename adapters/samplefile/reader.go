// Package samplefile loads single-column samples from text, CSV and Excel
// files and writes generated samples back out.
//
// Text and CSV files hold one value per line (the first CSV field is used).
// Excel workbooks are read from column A of the first sheet. Blank lines are
// skipped. A first row that does not parse as a number is treated as a
// header; any later unparsable row is an error.
package samplefile

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"kstest/internal"
	"kstest/internal/errors"
	"kstest/ports"
)

// Format identifies how a sample file is encoded.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from the file extension. Unknown extensions
// are read as text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatText
	}
}

// Reader loads samples from files.
type Reader struct {
	logger *internal.Logger
}

// NewReader creates a file reader. A nil logger uses internal.DefaultLogger.
func NewReader(logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{logger: logger}
}

// ReadFloats loads a floating point sample.
func (r *Reader) ReadFloats(ctx context.Context, path string) ([]float64, error) {
	return readSample(ctx, r, path, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ReadInts loads an integer sample.
func (r *Reader) ReadInts(ctx context.Context, path string) ([]int64, error) {
	return readSample(ctx, r, path, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

func readSample[T any](ctx context.Context, r *Reader, path string, parse func(string) (T, error)) ([]T, error) {
	start := time.Now()
	format := DetectFormat(path)

	cells, err := r.readCells(ctx, path, format)
	if err != nil {
		return nil, err
	}

	values := make([]T, 0, len(cells))
	for i, c := range cells {
		v, err := parse(c.text)
		if err != nil {
			if i == 0 {
				r.logger.Debug("skipping header row", "path", path, "header", c.text)
				continue
			}
			return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "%s line %d: cannot parse %q", path, c.line, c.text)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s contains no values", path))
	}

	r.logger.Debug("sample loaded", "path", path, "format", string(format), "values", len(values),
		"elapsed_ms", float64(time.Since(start).Nanoseconds())/1e6)
	return values, nil
}

// cell is one non-blank first-column entry with its 1-based line or row.
type cell struct {
	line int
	text string
}

func (r *Reader) readCells(ctx context.Context, path string, format Format) ([]cell, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.IOError(path, err)
	}
	switch format {
	case FormatXLSX:
		return readExcelCells(ctx, path)
	case FormatCSV:
		return readDelimitedCells(ctx, path, true)
	default:
		return readDelimitedCells(ctx, path, false)
	}
}

func readDelimitedCells(ctx context.Context, path string, isCSV bool) ([]cell, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	defer file.Close()

	var cells []cell
	if !isCSV {
		scanner := bufio.NewScanner(file)
		line := 0
		for scanner.Scan() {
			line++
			if line%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			if text := strings.TrimSpace(scanner.Text()); text != "" {
				cells = append(cells, cell{line: line, text: text})
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.IOError(path, err)
		}
		return cells, nil
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to read CSV file %s", path)
		}
		line, _ := reader.FieldPos(0)
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(record) == 0 {
			continue
		}
		if text := strings.TrimSpace(record[0]); text != "" {
			cells = append(cells, cell{line: line, text: text})
		}
	}
	return cells, nil
}

func readExcelCells(ctx context.Context, path string) ([]cell, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has no sheets", path))
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	defer rows.Close()

	var cells []cell
	row := 0
	for rows.Next() {
		row++
		if row%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		columns, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, errors.IOError(path, err)
		}
		if len(columns) == 0 {
			continue
		}
		if text := strings.TrimSpace(columns[0]); text != "" {
			cells = append(cells, cell{line: row, text: text})
		}
	}
	if err := rows.Error(); err != nil {
		return nil, errors.IOError(path, err)
	}
	return cells, nil
}

var _ ports.SampleReaderPort = (*Reader)(nil)
