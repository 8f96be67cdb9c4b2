// Package models provides the domain models for trade reconciliation and
// performance analysis. All monetary and quantity values use
// shopspring/decimal, never float64, so that P&L survives many
// accumulations without rounding drift. Display ratios (win rates,
// percentages) are plain float64.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Side represents the direction of a fill.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide resolves a raw side string. Broker exports are inconsistent
// about terminology, so "long" and "short" are accepted as aliases.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long":
		return SideBuy, nil
	case "sell", "short":
		return SideSell, nil
	default:
		return "", fmt.Errorf("invalid side %q", s)
	}
}

// TimeLayout is the timestamp format used by trade CSV exports, interpreted
// as UTC.
const TimeLayout = "2006-01-02 15:04:05"

// ParseTime parses an execution timestamp in TimeLayout as a UTC instant.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}
