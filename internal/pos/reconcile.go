package pos

import "github.com/zedx-auto/garagepos/internal/shopapi"

// MergeDetails diffs the edited cart against the originally persisted detail
// lines. Persisted detail ids are reused for lines whose service is still in
// the cart, new lines are emitted without an id, and lines whose service was
// removed are re-emitted inactive so the backend soft-deletes them instead of
// losing history.
func MergeDetails(original []shopapi.TransactionDetail, lines []CartLine) []shopapi.TransactionDetail {
	byService := make(map[int64]shopapi.TransactionDetail, len(original))
	for _, d := range original {
		byService[d.Service.ID] = d
	}

	merged := make([]shopapi.TransactionDetail, 0, len(lines)+len(original))
	inCart := make(map[int64]bool, len(lines))
	for _, line := range lines {
		inCart[line.ServiceID] = true
		detail := shopapi.TransactionDetail{
			Service:     shopapi.Service{ID: line.ServiceID, Name: line.Name, Icon: line.Icon},
			Amount:      line.Price,
			Description: line.Description,
			IsActive:    1,
		}
		if orig, ok := byService[line.ServiceID]; ok {
			detail.ID = orig.ID
		}
		merged = append(merged, detail)
	}

	for _, d := range original {
		if inCart[d.Service.ID] {
			continue
		}
		dropped := d
		dropped.IsActive = 0
		merged = append(merged, dropped)
	}
	return merged
}

// FinalAmountDue is the remaining balance once the advance is deducted from
// the recomputed total. The advance already collected is never re-charged.
func FinalAmountDue(newTotal, advancePaid float64) float64 {
	return newTotal - advancePaid
}
