package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	r, err := parseDateRange("03/15/2025")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.Local), r.Start)
	assert.Equal(t, time.Date(2025, 3, 15, 23, 59, 59, 0, time.Local), r.End)
}

func TestParseDateRangeInvalid(t *testing.T) {
	for _, param := range []string{
		"",
		"2025-03-15",
		"15/03",
		"13/01/2025",
		"00/10/2025",
		"01/32/2025",
		"aa/bb/cccc",
	} {
		t.Run(param, func(t *testing.T) {
			_, err := parseDateRange(param)
			assert.Error(t, err)
		})
	}
}
