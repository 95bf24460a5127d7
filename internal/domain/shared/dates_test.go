package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetween(t *testing.T) {
	due := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(due, due.Add(23*time.Hour)))
	assert.Equal(t, 30, DaysBetween(due, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, -10, DaysBetween(due, time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)))
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), EndOfMonth(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), EndOfMonth(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))
}
