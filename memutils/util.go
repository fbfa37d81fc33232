package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~int32 | ~uint32 | ~int64 | ~uint64
}

// CheckPositive returns ErrInvalidSize if number is not greater than zero
func CheckPositive[T Number](number T, name string) error {
	if number <= 0 {
		return cerrors.Wrapf(ErrInvalidSize, "%s is %d, must be greater than 0", name, number)
	}
	return nil
}

// CheckNonNegative returns ErrInvalidSize if number is less than zero
func CheckNonNegative[T Number](number T, name string) error {
	if number < 0 {
		return cerrors.Wrapf(ErrInvalidSize, "%s is %d, must not be negative", name, number)
	}
	return nil
}

// CheckRange returns ErrInvalidSize if [offset, offset+count) does not fit within [0, capacity)
func CheckRange(offset, count, capacity int, name string) error {
	if offset < 0 || count < 0 || count > capacity-offset {
		return cerrors.Wrapf(ErrInvalidSize, "%s of %d elements at offset %d falls outside of [0, %d)", name, count, offset, capacity)
	}
	return nil
}
