package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidNumbers    = fmt.Errorf("invalid numbers: %w", ErrNotFound)
	ErrConflict          = errors.New("numbers already taken")
	ErrInvalidTransition = errors.New("invalid payment transition")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrNoPendingPayment  = errors.New("no pending payment")
	ErrPaymentExpired    = errors.New("payment expired")
	ErrValidation        = errors.New("invalid input")
	ErrBuyerNotFound     = fmt.Errorf("buyer %w", ErrNotFound)
	ErrRaffleNotFound    = fmt.Errorf("raffle %w", ErrNotFound)
	ErrPaymentNotFound   = fmt.Errorf("payment %w", ErrNotFound)
)

// ConflictError часть номеров уже занята; Pool - актуальное состояние пула после отката
type ConflictError struct {
	RaffleID int64
	Taken    []int
	Pool     []PoolEntry
}

func (e *ConflictError) Error() string {
	taken := make([]string, 0, len(e.Taken))
	for _, n := range e.Taken {
		taken = append(taken, strconv.Itoa(n))
	}
	return fmt.Sprintf("raffle %d: numbers already taken: %s", e.RaffleID, strings.Join(taken, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError taken сортируются
func NewConflictError(raffleID int64, taken []int) *ConflictError {
	sorted := append([]int(nil), taken...)
	sort.Ints(sorted)
	return &ConflictError{RaffleID: raffleID, Taken: sorted}
}

// StoreError оборачивает ошибку хранилища в ErrStoreUnavailable, доменные ошибки пропускает как есть
func StoreError(err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// IsDomainError ошибка - ожидаемый бизнес-исход, а не сбой инфраструктуры
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNoPendingPayment) ||
		errors.Is(err, ErrPaymentExpired) ||
		errors.Is(err, ErrValidation)
}

// BusinessError ошибка бизнес-логики, которая уже залогирована в UseCase
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func WrapBusinessError(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Err: err}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}
