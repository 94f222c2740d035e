package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/zedx-auto/garagepos/internal/pos"
	"github.com/zedx-auto/garagepos/internal/receipt"
	"github.com/zedx-auto/garagepos/report"
)

// ReceiptProcessor renders receipts in the background and publishes the
// WhatsApp handoff the terminal polls for.
type ReceiptProcessor struct {
	logger      *slog.Logger
	pdf         *report.Client
	handoffs    *receipt.HandoffStore
	countryCode string
}

// NewReceiptProcessor builds a ReceiptProcessor. pdf may be nil when no
// Gotenberg instance is configured; handoffs are still produced without a
// rendered document.
func NewReceiptProcessor(logger *slog.Logger, pdf *report.Client, handoffs *receipt.HandoffStore, countryCode string) *ReceiptProcessor {
	return &ReceiptProcessor{logger: logger, pdf: pdf, handoffs: handoffs, countryCode: countryCode}
}

// Handle processes TaskReceiptDispatch tasks.
func (p *ReceiptProcessor) Handle(ctx context.Context, t *asynq.Task) error {
	var job pos.ReceiptJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		p.logger.Error("receipt dispatch payload is malformed", slog.Any("error", err))
		return asynq.SkipRetry
	}

	in := receipt.Input{
		Kind:          job.Kind,
		Shop:          job.Shop,
		Transaction:   job.Transaction,
		AdvanceAmount: job.AdvanceAmount,
	}
	msg := receipt.Message(in)

	var phone, link string
	if job.Transaction.Customer != nil {
		phone = receipt.NormalizePhone(job.Transaction.Customer.MobileNumber, p.countryCode)
	}
	if phone != "" {
		link = receipt.WhatsAppLink(phone, msg)
	}

	pdfRendered := false
	if p.pdf != nil {
		if err := p.renderAndStorePDF(ctx, in, job.Transaction.TransactionNo); err != nil {
			// The plain-text handoff still works without the document, so a
			// rendering outage does not retry the whole job.
			p.logger.Warn("receipt pdf rendering failed",
				slog.String("transaction_no", job.Transaction.TransactionNo),
				slog.Any("error", err))
		} else {
			pdfRendered = true
		}
	}

	handoff := receipt.Handoff{
		TransactionNo: job.Transaction.TransactionNo,
		Kind:          job.Kind,
		Phone:         phone,
		Message:       msg,
		WhatsAppLink:  link,
		PDFRendered:   pdfRendered,
	}
	if err := p.handoffs.Save(ctx, handoff); err != nil {
		return err
	}

	p.logger.Info("receipt handoff ready",
		slog.String("transaction_no", job.Transaction.TransactionNo),
		slog.String("kind", job.Kind),
		slog.Bool("pdf", pdfRendered))
	return nil
}

func (p *ReceiptProcessor) renderAndStorePDF(ctx context.Context, in receipt.Input, transactionNo string) error {
	html, err := receipt.HTML(in)
	if err != nil {
		return err
	}
	doc, err := p.pdf.RenderHTML(ctx, html)
	if err != nil {
		return err
	}
	return p.handoffs.SavePDF(ctx, transactionNo, doc)
}
