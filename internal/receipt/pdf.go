package receipt

import (
	"fmt"
	"html/template"
	"strings"
)

// receiptHTML is the printable receipt layout handed to the PDF renderer.
var receiptHTML = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; margin: 32px; }
h1 { font-size: 16px; letter-spacing: 2px; }
.meta { display: flex; justify-content: space-between; margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; }
th, td { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
td.amount, th.amount { text-align: right; }
.totals { margin-top: 16px; width: 40%; margin-left: auto; }
.totals div { display: flex; justify-content: space-between; padding: 2px 0; }
.totals .grand { font-weight: bold; border-top: 1px solid #333; }
.footer { margin-top: 24px; font-size: 10px; color: #555; }
</style>
</head>
<body>
<h1>RECEIPT</h1>
<div class="meta">
  <div>
    <strong>{{.ShopName}}</strong><br>
    {{.ShopAddress}}
  </div>
  <div>
    <strong>BILL TO</strong><br>
    {{.CustomerName}}<br>
    {{.VehicleNumber}}<br>
    {{.MobileNumber}}
  </div>
  <div>
    <strong>RECEIPT #</strong> {{.TransactionNo}}<br>
    <strong>DATE</strong> {{.Date}}
  </div>
</div>
<table>
  <tr><th>QTY</th><th>DESCRIPTION</th><th class="amount">AMOUNT</th></tr>
  {{range .Lines}}
  <tr><td>1</td><td>{{.Name}}{{if .Description}}<br><em>{{.Description}}</em>{{end}}</td><td class="amount">{{.Amount}}</td></tr>
  {{end}}
</table>
<div class="totals">
  <div><span>Subtotal</span><span>{{.Subtotal}}</span></div>
  {{if .ShowAdvance}}<div><span>Advance paid</span><span>{{.Advance}}</span></div>{{end}}
  <div class="grand"><span>{{.DueLabel}}</span><span>{{.Due}}</span></div>
</div>
<div class="footer">
  Payment method: {{.PaymentMethod}}<br>
  Thank you for your business.
</div>
</body>
</html>`))

type receiptLine struct {
	Name        string
	Description string
	Amount      string
}

type receiptPage struct {
	ShopName      string
	ShopAddress   string
	CustomerName  string
	VehicleNumber string
	MobileNumber  string
	TransactionNo string
	Date          string
	Lines         []receiptLine
	Subtotal      string
	ShowAdvance   bool
	Advance       string
	DueLabel      string
	Due           string
	PaymentMethod string
}

// HTML renders the printable receipt for PDF conversion.
func HTML(in Input) (string, error) {
	txn := in.Transaction
	page := receiptPage{
		ShopName:      in.Shop.Name,
		ShopAddress:   in.Shop.Address,
		TransactionNo: txn.TransactionNo,
		Date:          receiptDate(txn).Format("02 Jan 2006"),
		Subtotal:      formatAmount(txn.TotalAmount),
	}
	if txn.Customer != nil {
		page.CustomerName = txn.Customer.Name
		page.VehicleNumber = txn.Customer.VehicleNumber
		page.MobileNumber = txn.Customer.MobileNumber
	}
	if txn.PaymentMethod != nil {
		page.PaymentMethod = txn.PaymentMethod.Name
	}
	for _, d := range txn.ActiveDetails() {
		page.Lines = append(page.Lines, receiptLine{
			Name:        d.Service.Name,
			Description: d.Description,
			Amount:      formatAmount(d.Amount),
		})
	}

	switch in.Kind {
	case KindAdvance:
		page.ShowAdvance = true
		page.Advance = formatAmount(in.AdvanceAmount)
		page.DueLabel = "Balance due"
		page.Due = formatAmount(txn.TotalAmount - in.AdvanceAmount)
	case KindFinal:
		page.ShowAdvance = true
		page.Advance = formatAmount(in.AdvanceAmount)
		page.DueLabel = "Paid now"
		page.Due = formatAmount(txn.TotalAmount - in.AdvanceAmount)
	default:
		page.DueLabel = "Total paid"
		page.Due = formatAmount(txn.TotalAmount)
	}

	var b strings.Builder
	if err := receiptHTML.Execute(&b, page); err != nil {
		return "", fmt.Errorf("receipt: render html: %w", err)
	}
	return b.String(), nil
}
