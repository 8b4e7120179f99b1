package samplefile

import (
	"bufio"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"kstest/internal/errors"
)

// WriteFloats writes values one per row in the format implied by path.
func WriteFloats(path string, values []float64) error {
	if DetectFormat(path) == FormatXLSX {
		return writeExcel(path, values)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.IOError(path, err)
	}
	w := bufio.NewWriter(file)
	for _, v := range values {
		w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return errors.IOError(path, err)
	}
	if err := file.Close(); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}

func writeExcel(path string, values []float64) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.IOError(path, err)
	}
	for i, v := range values {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "invalid cell coordinates")
		}
		if err := sw.SetRow(cellRef, []interface{}{v}); err != nil {
			return errors.IOError(path, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.IOError(path, err)
	}
	if err := f.SaveAs(path); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}
