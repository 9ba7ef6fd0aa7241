package usecase

import (
	"errors"
	"fmt"
)

// ErrorKind はエラーの種類。呼び出し側（API）はこれで応答を決める。
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindDuplicateKey      ErrorKind = "duplicate_key"
	KindNotFound          ErrorKind = "not_found"
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindEmptyCart         ErrorKind = "empty_cart"
	KindPersistence       ErrorKind = "persistence"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(kind ErrorKind, message string) error {
	return &AppError{Kind: kind, Message: message}
}

func wrapAppError(kind ErrorKind, message string, err error) error {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// DBなどの失敗
func persistenceError(err error) error {
	return wrapAppError(KindPersistence, "db error", err)
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

func IsKind(err error, kind ErrorKind) bool {
	ae, ok := AsAppError(err)
	return ok && ae.Kind == kind
}

// StockShortage は会計時の在庫不足の詳細。
type StockShortage struct {
	ProductID int64
	SKU       string
	Name      string
	Requested int64
	Available int64
}

func (s *StockShortage) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s): requested %d, available %d",
		s.SKU, s.Name, s.Requested, s.Available)
}

func insufficientStockError(s *StockShortage) error {
	return wrapAppError(KindInsufficientStock, "insufficient stock: "+s.SKU, s)
}
