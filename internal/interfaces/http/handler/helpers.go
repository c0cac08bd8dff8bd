package handler

import (
	"errors"
	"strconv"
)

// parsePositiveInt parses a strictly positive integer
func parsePositiveInt(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.New("value must be positive")
	}
	return v, nil
}
