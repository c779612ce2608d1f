package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"StockAnalyser/internal/model"
)

var (
	// ErrNotEnoughColumns is returned when a CSV price row has fewer than six columns.
	ErrNotEnoughColumns = errors.New("not enough columns")

	// ErrInvalidDate is returned when the date column is not in yyyy-mm-dd format.
	ErrInvalidDate = errors.New("cannot parse date")

	// ErrInvalidPrice is returned when an OHLC column is not a decimal number.
	ErrInvalidPrice = errors.New("OHLC prices must be in valid decimal format")

	// ErrInvalidVolume is returned when the volume column is not a number.
	ErrInvalidVolume = errors.New("volume must be a valid number")
)

// DecodeCSVRecord decodes a "date,open,high,low,close,volume" row.
func DecodeCSVRecord(row []string) (model.PriceRecord, error) {
	var r model.PriceRecord
	if len(row) < 6 {
		return r, ErrNotEnoughColumns
	}

	date, err := time.Parse(model.DateLayout, strings.TrimSpace(row[0]))
	if err != nil {
		return r, fmt.Errorf("%w: %q", ErrInvalidDate, row[0])
	}
	r.Date = date

	prices := [4]*float64{&r.Open, &r.High, &r.Low, &r.Close}
	for i, p := range prices {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return model.PriceRecord{}, fmt.Errorf("%w: %q", ErrInvalidPrice, row[i+1])
		}
		*p = v
	}

	vol := strings.TrimSpace(row[5])
	if r.Volume, err = strconv.ParseInt(vol, 10, 64); err != nil {
		f, ferr := strconv.ParseFloat(vol, 64)
		if ferr != nil {
			return model.PriceRecord{}, fmt.Errorf("%w: %q", ErrInvalidVolume, row[5])
		}
		r.Volume = int64(f)
	}
	return r, nil
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(row[0])) {
	case "timestamp", "date":
		return true
	}
	return false
}

// ReadCSV reads price rows from r, skipping an optional header line. Rows are
// returned in file order; a malformed row aborts the read with its line number.
func ReadCSV(r io.Reader) ([]model.PriceRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []model.PriceRecord
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if line == 1 && isHeader(row) {
			continue
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rec, err := DecodeCSVRecord(row)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		records = append(records, rec)
	}
}
