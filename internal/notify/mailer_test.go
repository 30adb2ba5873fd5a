package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRequestDate(t *testing.T) {
	ts := time.Date(2026, time.September, 1, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "01 Sep 2026, 3:04 PM", FormatRequestDate(ts))

	morning := time.Date(2026, time.January, 9, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "09 Jan 2026, 9:30 AM", FormatRequestDate(morning))
}
