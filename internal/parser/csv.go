// Package parser reads broker CSV exports into trade records.
package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
)

// FileFormat classifies a CSV export by its header row.
type FileFormat string

const (
	FormatUnknown   FileFormat = "unknown"
	FormatTrades    FileFormat = "trades"
	FormatPositions FileFormat = "positions"
)

// tradeRow is the gocsv row shape of a trade export. Every field stays a
// string so conversion failures can name the file and line.
type tradeRow struct {
	Symbol     string `csv:"Symbol"`
	Side       string `csv:"Side"`
	Qty        string `csv:"Qty"`
	FillPrice  string `csv:"Fill Price"`
	Time       string `csv:"Time"`
	NetAmount  string `csv:"Net Amount"`
	Commission string `csv:"Commission"`
}

// canonicalColumns maps lowercased header names to the canonical spelling
// the row struct binds to. Quantity is an accepted alias some exports use.
var canonicalColumns = map[string]string{
	"symbol":     "Symbol",
	"side":       "Side",
	"qty":        "Qty",
	"quantity":   "Qty",
	"fill price": "Fill Price",
	"time":       "Time",
	"net amount": "Net Amount",
	"commission": "Commission",
}

var requiredColumns = []string{"Symbol", "Side", "Qty", "Fill Price", "Time", "Net Amount"}

// DetectFormat reads only the header row and classifies the file. Position
// exports are recognized by their valuation columns; trade exports by the
// fill columns. Anything else is unknown.
func DetectFormat(path string) (FileFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		if err == io.EOF {
			return FormatUnknown, nil
		}
		return FormatUnknown, apperrors.NewParseError(filepath.Base(path), 1, err)
	}
	return detectHeader(header), nil
}

func detectHeader(header []string) FileFormat {
	line := strings.ToLower(strings.Join(header, ","))

	for _, marker := range []string{"unrealized", "avg price", "last price", "position id"} {
		if strings.Contains(line, marker) {
			return FormatPositions
		}
	}
	if strings.Contains(line, "symbol") && strings.Contains(line, "side") &&
		(strings.Contains(line, "qty") || strings.Contains(line, "quantity")) &&
		strings.Contains(line, "fill price") {
		return FormatTrades
	}
	return FormatUnknown
}

// ParseTradesFile parses one trade export from disk.
func ParseTradesFile(path string) ([]models.TradeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseTrades(f, filepath.Base(path))
}

// ParseTrades parses a trade export. name labels the source in errors. The
// header is matched case-insensitively and the Commission column may be
// blank or absent, defaulting to zero; every other column is required.
func ParseTrades(r io.Reader, name string) ([]models.TradeRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewParseError(name, 0, err)
	}

	normalized, err := canonicalizeHeader(data)
	if err != nil {
		return nil, apperrors.NewParseError(name, 1, err)
	}

	var rows []*tradeRow
	if err := gocsv.UnmarshalBytes(normalized, &rows); err != nil {
		return nil, apperrors.NewParseError(name, 0, err)
	}

	trades := make([]models.TradeRecord, 0, len(rows))
	for i, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			// Line numbers are 1-based and the header occupies line 1.
			return nil, apperrors.NewParseError(name, i+2, err)
		}
		trades = append(trades, record)
	}
	return trades, nil
}

// canonicalizeHeader rewrites the header record into the canonical column
// spellings so gocsv can bind it, leaving the data rows untouched. Position
// exports fail with ErrNotTradesFile, headers matching no known export with
// ErrUnknownFormat.
func canonicalizeHeader(data []byte) ([]byte, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, apperrors.ErrUnknownFormat
		}
		return nil, err
	}
	offset := reader.InputOffset()

	switch detectHeader(header) {
	case FormatPositions:
		return nil, fmt.Errorf("%w: positions export", apperrors.ErrNotTradesFile)
	case FormatUnknown:
		return nil, apperrors.ErrUnknownFormat
	}

	present := make(map[string]bool, len(header))
	for i, col := range header {
		if canonical, ok := canonicalColumns[strings.ToLower(strings.TrimSpace(col))]; ok {
			header[i] = canonical
			present[canonical] = true
		}
	}
	for _, col := range requiredColumns {
		if !present[col] {
			return nil, fmt.Errorf("%w: missing column %q", apperrors.ErrNotTradesFile, col)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	buf.Write(data[offset:])
	return buf.Bytes(), nil
}

func (row *tradeRow) toRecord() (models.TradeRecord, error) {
	var record models.TradeRecord

	symbol := strings.TrimSpace(row.Symbol)
	if symbol == "" {
		return record, fmt.Errorf("symbol is empty")
	}

	side, err := models.ParseSide(strings.TrimSpace(row.Side))
	if err != nil {
		return record, err
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(row.Qty))
	if err != nil {
		return record, fmt.Errorf("invalid quantity %q", row.Qty)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(row.FillPrice))
	if err != nil {
		return record, fmt.Errorf("invalid fill price %q", row.FillPrice)
	}
	ts, err := models.ParseTime(strings.TrimSpace(row.Time))
	if err != nil {
		return record, err
	}
	netAmount, err := decimal.NewFromString(strings.TrimSpace(row.NetAmount))
	if err != nil {
		return record, fmt.Errorf("invalid net amount %q", row.NetAmount)
	}

	commission := decimal.Zero
	if c := strings.TrimSpace(row.Commission); c != "" {
		commission, err = decimal.NewFromString(c)
		if err != nil {
			return record, fmt.Errorf("invalid commission %q", row.Commission)
		}
	}

	record = models.TradeRecord{
		Symbol:     symbol,
		Side:       side,
		Quantity:   qty,
		FillPrice:  price,
		Time:       ts,
		NetAmount:  netAmount,
		Commission: commission,
	}
	return record, nil
}

// Dedupe drops fills whose canonical key was already seen, keeping first
// occurrences in input order. The second return is the dropped count.
func Dedupe(trades []models.TradeRecord) ([]models.TradeRecord, int) {
	seen := make(map[models.TradeKey]struct{}, len(trades))
	kept := make([]models.TradeRecord, 0, len(trades))
	dropped := 0

	for _, tr := range trades {
		key := tr.Key()
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, tr)
	}
	return kept, dropped
}
