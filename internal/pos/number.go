package pos

import (
	"fmt"
	"strconv"
)

// transactionNoWidth is the zero-padded width of upstream receipt numbers.
const transactionNoWidth = 8

// FirstTransactionNo is issued when no prior transaction exists.
const FirstTransactionNo = "00000001"

// NextTransactionNo increments the last known receipt number. The value is
// advisory: the upstream backend stays the source of truth and may reject a
// number another terminal claimed first.
func NextTransactionNo(last string) string {
	if last == "" {
		return FirstTransactionNo
	}
	n, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return FirstTransactionNo
	}
	return fmt.Sprintf("%0*d", transactionNoWidth, n+1)
}
