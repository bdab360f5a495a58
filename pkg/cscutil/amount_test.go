package cscutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSCToDrops(t *testing.T) {
	tests := []struct {
		csc   string
		drops string
	}{
		{"1", "100000000"},
		{"0.5", "50000000"},
		{"1234.56789", "123456789000"},
		{"0.00000001", "1"},
		{"0", "0"},
	}
	for _, tt := range tests {
		drops, err := CSCToDrops(tt.csc)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, tt.drops, drops)
	}

	_, err := CSCToDrops("not a number")
	assert.Equal(t, ErrInvalidAmount, err)
}

func TestDropsToCSC(t *testing.T) {
	tests := []struct {
		drops string
		csc   string
	}{
		{"100000000", "1"},
		{"50000000", "0.5"},
		{"1", "0.00000001"},
		{"0", "0.00"},
		{"-42", "0.00"},
	}
	for _, tt := range tests {
		csc, err := DropsToCSC(tt.drops)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, tt.csc, csc)
	}

	_, err := DropsToCSC("")
	assert.Equal(t, ErrInvalidAmount, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "2.5", FormatAmount("250000000"))
	assert.Equal(t, "garbage", FormatAmount("garbage"))
}
