package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrHandoffNotFound means no handoff has been produced for the receipt number.
var ErrHandoffNotFound = errors.New("receipt handoff not found")

// Handoff is the rendering outcome the terminal polls for after a sale: the
// ready-to-open WhatsApp link plus whether a PDF was produced.
type Handoff struct {
	TransactionNo string    `json:"transactionNo"`
	Kind          string    `json:"kind"`
	Phone         string    `json:"phone"`
	Message       string    `json:"message"`
	WhatsAppLink  string    `json:"whatsAppLink"`
	PDFRendered   bool      `json:"pdfRendered"`
	CreatedAt     time.Time `json:"createdAt"`
}

// HandoffStore keeps handoffs in Redis until the terminal collects them.
type HandoffStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHandoffStore constructs a HandoffStore.
func NewHandoffStore(client *redis.Client, ttl time.Duration) *HandoffStore {
	return &HandoffStore{client: client, ttl: ttl}
}

func (s *HandoffStore) key(transactionNo string) string {
	return "garagepos:receipt:" + transactionNo
}

// Save stores the handoff for a receipt number.
func (s *HandoffStore) Save(ctx context.Context, handoff Handoff) error {
	if handoff.CreatedAt.IsZero() {
		handoff.CreatedAt = time.Now()
	}
	data, err := json.Marshal(handoff)
	if err != nil {
		return fmt.Errorf("receipt: encode handoff: %w", err)
	}
	if err := s.client.Set(ctx, s.key(handoff.TransactionNo), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("receipt: save handoff: %w", err)
	}
	return nil
}

// Get returns the handoff for a receipt number, or ErrHandoffNotFound.
func (s *HandoffStore) Get(ctx context.Context, transactionNo string) (*Handoff, error) {
	data, err := s.client.Get(ctx, s.key(transactionNo)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrHandoffNotFound
		}
		return nil, fmt.Errorf("receipt: load handoff: %w", err)
	}
	var handoff Handoff
	if err := json.Unmarshal(data, &handoff); err != nil {
		return nil, fmt.Errorf("receipt: decode handoff: %w", err)
	}
	return &handoff, nil
}

// SavePDF stores the rendered receipt document alongside the handoff.
func (s *HandoffStore) SavePDF(ctx context.Context, transactionNo string, pdf []byte) error {
	if err := s.client.Set(ctx, s.key(transactionNo)+":pdf", pdf, s.ttl).Err(); err != nil {
		return fmt.Errorf("receipt: save pdf: %w", err)
	}
	return nil
}

// PDF returns the rendered document for a receipt number, or
// ErrHandoffNotFound when none was rendered.
func (s *HandoffStore) PDF(ctx context.Context, transactionNo string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(transactionNo)+":pdf").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrHandoffNotFound
		}
		return nil, fmt.Errorf("receipt: load pdf: %w", err)
	}
	return data, nil
}
