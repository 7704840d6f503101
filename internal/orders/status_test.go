package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusAcceptsAllNineStates(t *testing.T) {
	for _, s := range []string{
		"pending", "confirmed", "in progress", "shipped", "delivered",
		"completed", "cancelled", "refunded", "failed",
	} {
		st, err := ParseStatus(s)
		require.NoError(t, err, s)
		assert.Equal(t, Status(s), st)
	}
}

func TestParseStatusRejectsUnknownValues(t *testing.T) {
	for _, s := range []string{"", "PENDING", "done", "in-progress", "pending "} {
		_, err := ParseStatus(s)
		assert.Error(t, err, "%q should be rejected", s)
	}
}
