package liuren

import (
	"fmt"

	"github.com/zapponejosh/liuren-api/internal/apperr"
)

// Advance counts steps palaces around the circle starting at start, counting
// the start palace as the first, and returns the palace the count ends on.
//
// It computes (start + steps - 1) mod 9 without overflowing for large steps.
func Advance(start, steps int) (int, error) {
	if start < 0 || start >= Positions {
		return 0, fmt.Errorf("start %d outside [0,%d]: %w", start, Positions-1, apperr.ErrInvalidArgument)
	}
	if steps < 1 {
		return 0, fmt.Errorf("steps must be positive, got %d: %w", steps, apperr.ErrInvalidArgument)
	}
	return (start + (steps-1)%Positions) % Positions, nil
}
