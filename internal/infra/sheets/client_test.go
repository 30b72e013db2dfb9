package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowFromRange(t *testing.T) {
	assert.Equal(t, 12, rowFromRange("Leads!A12:J12"))
	assert.Equal(t, 3, rowFromRange("'Payments'!A3:H3"))
	assert.Equal(t, 7, rowFromRange("Trials!AB7"))
	assert.Equal(t, 0, rowFromRange(""))
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "123456789", cellString(float64(123456789)))
	assert.Equal(t, "TRUE", cellString(true))
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "abc", cellString("abc"))
}
