package algebra

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch indicates a coefficient or kernel output that cannot
	// be reconciled with the unknown's shape.
	ErrShapeMismatch = errors.New("algebra: shape mismatch")

	// ErrSingular indicates a non-invertible operator in a linear solve.
	ErrSingular = errors.New("algebra: singular operator")
)

// ShapeError carries the two shapes that failed to reconcile.
type ShapeError struct {
	Want string
	Got  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: want %s, got %s", ErrShapeMismatch, e.Want, e.Got)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}
