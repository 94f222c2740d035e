package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/zedx-auto/garagepos/internal/pos"
	"github.com/zedx-auto/garagepos/internal/receipt"
	"github.com/zedx-auto/garagepos/internal/shopapi"
	"github.com/zedx-auto/garagepos/report"

	_ "github.com/zedx-auto/garagepos/testing"
)

func sampleJob() pos.ReceiptJob {
	detailID := int64(1)
	return pos.ReceiptJob{
		Kind: pos.ReceiptKindFull,
		Shop: shopapi.ShopDetails{Name: "ZedX Auto", Address: "12 Galle Road"},
		Transaction: shopapi.Transaction{
			ID:            7,
			TransactionNo: "00000007",
			Customer:      &shopapi.Customer{Name: "Nimal", MobileNumber: "0771234567"},
			TotalAmount:   150,
			Status:        shopapi.StatusCompleted,
			Details: []shopapi.TransactionDetail{
				{ID: &detailID, Service: shopapi.Service{ID: 1, Name: "Wash"}, Amount: 150, IsActive: 1},
			},
		},
	}
}

func newProcessorFixture(t *testing.T, gotenberg *report.Client) (*ReceiptProcessor, *receipt.HandoffStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	handoffs := receipt.NewHandoffStore(client, time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewReceiptProcessor(logger, gotenberg, handoffs, "94"), handoffs
}

func TestReceiptDispatchProducesHandoff(t *testing.T) {
	gotenberg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		_, _ = w.Write([]byte("%PDF-1.7 rendered"))
	}))
	defer gotenberg.Close()

	processor, handoffs := newProcessorFixture(t, report.NewClient(gotenberg.URL))

	task, err := NewReceiptDispatchTask(sampleJob())
	require.NoError(t, err)
	require.NoError(t, processor.Handle(context.Background(), task))

	handoff, err := handoffs.Get(context.Background(), "00000007")
	require.NoError(t, err)
	require.Equal(t, "94771234567", handoff.Phone)
	require.Contains(t, handoff.Message, "Receipt #00000007")
	require.Contains(t, handoff.WhatsAppLink, "https://wa.me/94771234567?text=")
	require.True(t, handoff.PDFRendered)

	doc, err := handoffs.PDF(context.Background(), "00000007")
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.7 rendered"), doc)
}

func TestReceiptDispatchSurvivesRendererOutage(t *testing.T) {
	gotenberg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer gotenberg.Close()

	processor, handoffs := newProcessorFixture(t, report.NewClient(gotenberg.URL))

	task, err := NewReceiptDispatchTask(sampleJob())
	require.NoError(t, err)
	require.NoError(t, processor.Handle(context.Background(), task))

	handoff, err := handoffs.Get(context.Background(), "00000007")
	require.NoError(t, err)
	require.False(t, handoff.PDFRendered)
	require.NotEmpty(t, handoff.WhatsAppLink)
}

func TestReceiptDispatchWithoutRenderer(t *testing.T) {
	processor, handoffs := newProcessorFixture(t, nil)

	task, err := NewReceiptDispatchTask(sampleJob())
	require.NoError(t, err)
	require.NoError(t, processor.Handle(context.Background(), task))

	handoff, err := handoffs.Get(context.Background(), "00000007")
	require.NoError(t, err)
	require.False(t, handoff.PDFRendered)
}

func TestReceiptDispatchMalformedPayloadSkipsRetry(t *testing.T) {
	processor, _ := newProcessorFixture(t, nil)

	task := asynq.NewTask(TaskReceiptDispatch, []byte("{not json"))
	err := processor.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestReceiptDispatchTaskPayload(t *testing.T) {
	job := sampleJob()
	task, err := NewReceiptDispatchTask(job)
	require.NoError(t, err)
	require.Equal(t, TaskReceiptDispatch, task.Type())

	var decoded pos.ReceiptJob
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	require.Equal(t, job.Transaction.TransactionNo, decoded.Transaction.TransactionNo)
	require.Equal(t, job.Shop.Name, decoded.Shop.Name)
}
