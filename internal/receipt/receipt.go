// Package receipt formats sale receipts and builds the WhatsApp handoff.
package receipt

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zedx-auto/garagepos/internal/shopapi"
)

// Kind labels match the POS receipt kinds.
const (
	KindAdvance = "advance"
	KindFull    = "full"
	KindFinal   = "final"
)

// Input carries everything a receipt needs; all values are already validated
// by the time they reach this package.
type Input struct {
	Kind          string
	Shop          shopapi.ShopDetails
	Transaction   shopapi.Transaction
	AdvanceAmount float64
}

var amounts = message.NewPrinter(language.English)

func formatAmount(v float64) string {
	return amounts.Sprintf("Rs. %.2f", v)
}

// Message renders the plain-text receipt sent over WhatsApp.
func Message(in Input) string {
	txn := in.Transaction
	var b strings.Builder

	if in.Shop.Name != "" {
		fmt.Fprintf(&b, "*%s*\n", in.Shop.Name)
	}
	fmt.Fprintf(&b, "Receipt #%s\n", txn.TransactionNo)
	fmt.Fprintf(&b, "Date: %s\n", receiptDate(txn).Format("02 Jan 2006"))
	if txn.Customer != nil {
		fmt.Fprintf(&b, "Customer: %s\n", txn.Customer.Name)
		if txn.Customer.VehicleNumber != "" {
			fmt.Fprintf(&b, "Vehicle: %s\n", txn.Customer.VehicleNumber)
		}
	}

	b.WriteString("\nServices:\n")
	for _, d := range txn.ActiveDetails() {
		if d.Description != "" {
			fmt.Fprintf(&b, "- %s (%s): %s\n", d.Service.Name, d.Description, formatAmount(d.Amount))
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", d.Service.Name, formatAmount(d.Amount))
		}
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", formatAmount(txn.TotalAmount))
	switch in.Kind {
	case KindAdvance:
		fmt.Fprintf(&b, "Advance paid: %s\n", formatAmount(in.AdvanceAmount))
		fmt.Fprintf(&b, "Balance due: %s\n", formatAmount(txn.TotalAmount-in.AdvanceAmount))
	case KindFinal:
		fmt.Fprintf(&b, "Advance paid: %s\n", formatAmount(in.AdvanceAmount))
		fmt.Fprintf(&b, "Paid now: %s\n", formatAmount(txn.TotalAmount-in.AdvanceAmount))
	default:
		fmt.Fprintf(&b, "Paid in full: %s\n", formatAmount(txn.TotalAmount))
	}
	if txn.PaymentMethod != nil && txn.PaymentMethod.Name != "" {
		fmt.Fprintf(&b, "Payment method: %s\n", txn.PaymentMethod.Name)
	}
	b.WriteString("\nThank you for your business!")
	return b.String()
}

func receiptDate(txn shopapi.Transaction) time.Time {
	if txn.FinalPaymentDateTime != nil {
		return *txn.FinalPaymentDateTime
	}
	if txn.AdvancePaymentDateTime != nil {
		return *txn.AdvancePaymentDateTime
	}
	return time.Now()
}

// NormalizePhone strips everything but digits and swaps a leading national
// trunk zero for the country code. A number already missing the trunk zero
// gets the country code prefixed. No dispatchability check is done; a
// malformed input yields a link that simply will not resolve.
func NormalizePhone(raw, countryCode string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	switch {
	case n == "":
		return ""
	case strings.HasPrefix(n, "0"):
		return countryCode + n[1:]
	case strings.HasPrefix(n, countryCode):
		return n
	default:
		return countryCode + n
	}
}

// WhatsAppLink builds the wa.me deep link for the normalized phone number.
func WhatsAppLink(phone, text string) string {
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(text)
}
