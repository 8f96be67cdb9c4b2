// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNoData        = errors.New("no data")
	ErrInvalidTrade  = errors.New("invalid trade record")
	ErrUnknownFormat = errors.New("unrecognized file format")
	ErrNotTradesFile = errors.New("not a trades file")
	ErrConfigInvalid = errors.New("invalid configuration")
)

// ParseError represents a failure to parse a trade export file.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error %s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse error %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(file string, line int, err error) *ParseError {
	return &ParseError{
		File: file,
		Line: line,
		Err:  err,
	}
}

// StoreError represents a persistence-layer failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s]: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{
		Op:  op,
		Err: err,
	}
}

// TradeValidationError represents a trade record that failed the engine's
// precondition check. It unwraps to ErrInvalidTrade.
type TradeValidationError struct {
	Index  int
	Symbol string
	Reason string
}

func (e *TradeValidationError) Error() string {
	return fmt.Sprintf("%v: record %d (%s): %s", ErrInvalidTrade, e.Index, e.Symbol, e.Reason)
}

func (e *TradeValidationError) Unwrap() error {
	return ErrInvalidTrade
}

// NewTradeValidationError creates a new TradeValidationError.
func NewTradeValidationError(index int, symbol, reason string) *TradeValidationError {
	return &TradeValidationError{
		Index:  index,
		Symbol: symbol,
		Reason: reason,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
