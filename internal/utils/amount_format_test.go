package utils_test

import (
	"testing"

	"github.com/SscSPs/mma_recurring/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatWithPrecision(t *testing.T) {
	assert.Equal(t, "12.35", utils.FormatWithPrecision(decimal.RequireFromString("12.3456"), 2))
	assert.Equal(t, "12", utils.FormatWithPrecision(decimal.RequireFromString("12.3456"), 0))
	assert.Equal(t, "1000.00", utils.FormatMoney(decimal.NewFromInt(1000)))
	assert.Equal(t, "33.34", utils.FormatMoney(decimal.RequireFromString("33.34")))
}
