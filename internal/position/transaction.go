package position

import (
	"fmt"
	"strings"
	"time"
)

// Type is the closed set of ownership-affecting transaction kinds.
type Type int

const (
	Buy Type = iota + 1
	Sell
	TransferIn
	TransferOut
	DeliveryInbound
	DeliveryOutbound
)

var typeNames = map[Type]string{
	Buy:              "BUY",
	Sell:             "SELL",
	TransferIn:       "TRANSFER_IN",
	TransferOut:      "TRANSFER_OUT",
	DeliveryInbound:  "DELIVERY_INBOUND",
	DeliveryOutbound: "DELIVERY_OUTBOUND",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses the upper-case wire name of a transaction type.
func ParseType(s string) (Type, error) {
	needle := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == needle {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction type: %q", s)
}

// Inbound reports whether t adds shares to the holding.
// It panics on a value outside the closed set.
func (t Type) Inbound() bool {
	switch t {
	case Buy, TransferIn, DeliveryInbound:
		return true
	case Sell, TransferOut, DeliveryOutbound:
		return false
	}
	panic(fmt.Sprintf("position: unsupported transaction type %d", int(t)))
}

// Security identifies the instrument a position is held in.
type Security struct {
	ID     string
	Symbol string
}

// Quote is a point-in-time price for one whole share, in minor units.
type Quote struct {
	Date  time.Time
	Value int64
}

// Transaction is a single buy, sell, transfer or delivery.
// Shares are scaled by Scale.Shares, money fields are minor units.
type Transaction struct {
	Date     time.Time
	Security *Security
	Type     Type
	Shares   int64
	Amount   int64
	Fees     int64
	Taxes    int64
}

// NetAmount is the amount without fees and taxes.
func (t Transaction) NetAmount() int64 {
	return t.Amount - t.Fees - t.Taxes
}

// signedShares is positive for inbound and negative for outbound types.
func (t Transaction) signedShares() int64 {
	if t.Type.Inbound() {
		return t.Shares
	}
	return -t.Shares
}

// day strips the time of day, keeping the calendar date as recorded.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return day(a).Equal(day(b))
}
