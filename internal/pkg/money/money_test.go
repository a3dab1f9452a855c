package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "$0"},
		{999, "$999"},
		{20000, "$20,000"},
		{60000, "$60,000"},
		{1234567, "$1,234,567"},
		{-1500, "-$1,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.amount))
	}
}
