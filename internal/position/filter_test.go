package position

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestWithoutTransferPairs_NoInboundTransferReturnsInput(t *testing.T) {
	input := []Transaction{
		{Date: date(1), Type: Buy, Shares: 10, Amount: 1000},
		{Date: date(2), Type: TransferOut, Shares: 4, Amount: 400},
	}

	out := withoutTransferPairs(input)

	require.Len(t, out, 2)
	assert.Same(t, &input[0], &out[0])
}

func TestWithoutTransferPairs(t *testing.T) {
	buy := Transaction{Date: date(1), Type: Buy, Shares: 10, Amount: 1000}
	sell := Transaction{Date: date(2), Type: Sell, Shares: 2, Amount: 250}

	tests := []struct {
		name     string
		input    []Transaction
		expected []Transaction
	}{
		{
			name: "matched pair is removed",
			input: []Transaction{
				buy,
				{Date: date(3), Type: TransferOut, Shares: 5, Amount: 500},
				{Date: date(3), Type: TransferIn, Shares: 5, Amount: 500},
			},
			expected: []Transaction{buy},
		},
		{
			name: "time of day is ignored",
			input: []Transaction{
				{Date: date(3).Add(9 * time.Hour), Type: TransferIn, Shares: 5, Amount: 500},
				{Date: date(3).Add(17 * time.Hour), Type: TransferOut, Shares: 5, Amount: 500},
			},
			expected: []Transaction{},
		},
		{
			name: "different share count is kept",
			input: []Transaction{
				{Date: date(3), Type: TransferOut, Shares: 5, Amount: 500},
				{Date: date(3), Type: TransferIn, Shares: 4, Amount: 400},
			},
			expected: []Transaction{
				{Date: date(3), Type: TransferOut, Shares: 5, Amount: 500},
				{Date: date(3), Type: TransferIn, Shares: 4, Amount: 400},
			},
		},
		{
			name: "unmatched inbound transfers move to the end",
			input: []Transaction{
				{Date: date(2), Type: TransferIn, Shares: 3, Amount: 300},
				{Date: date(1), Type: TransferOut, Shares: 3, Amount: 300},
				sell,
			},
			expected: []Transaction{
				{Date: date(1), Type: TransferOut, Shares: 3, Amount: 300},
				sell,
				{Date: date(2), Type: TransferIn, Shares: 3, Amount: 300},
			},
		},
		{
			name: "first candidate in input order is consumed",
			input: []Transaction{
				buy,
				{Date: date(4), Type: TransferIn, Shares: 5, Amount: 100},
				{Date: date(4), Type: TransferOut, Shares: 5, Amount: 150},
				{Date: date(4), Type: TransferIn, Shares: 5, Amount: 200},
			},
			expected: []Transaction{
				buy,
				{Date: date(4), Type: TransferIn, Shares: 5, Amount: 200},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, withoutTransferPairs(tt.input))
		})
	}
}

func TestWithoutTransferPairs_DoesNotModifyInput(t *testing.T) {
	input := []Transaction{
		{Date: date(1), Type: TransferIn, Shares: 5, Amount: 100},
		{Date: date(1), Type: TransferIn, Shares: 5, Amount: 200},
		{Date: date(1), Type: TransferOut, Shares: 5, Amount: 100},
	}
	before := append([]Transaction(nil), input...)

	withoutTransferPairs(input)

	assert.Equal(t, before, input)
}
