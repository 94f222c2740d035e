package pos

import "github.com/zedx-auto/garagepos/internal/shopapi"

// AddItem appends a line for the service, or bumps the quantity counter when a
// line with the same service id already exists.
func (c *Cart) AddItem(service shopapi.Service, description string, amount float64) {
	for i := range c.Lines {
		if c.Lines[i].ServiceID == service.ID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ServiceID:   service.ID,
		Name:        service.Name,
		Icon:        service.Icon,
		Description: description,
		Price:       amount,
		Quantity:    1,
	})
}

// RemoveItem drops the line for the given service id, if present.
func (c *Cart) RemoveItem(serviceID int64) {
	kept := c.Lines[:0]
	for _, line := range c.Lines {
		if line.ServiceID != serviceID {
			kept = append(kept, line)
		}
	}
	c.Lines = kept
}

// UpdateQuantity replaces a line's quantity counter; a quantity below one
// removes the line.
func (c *Cart) UpdateQuantity(serviceID int64, quantity int) {
	if quantity < 1 {
		c.RemoveItem(serviceID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ServiceID == serviceID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

// Total sums the line prices. Quantity is intentionally not multiplied in: a
// repeated service is one charge, the counter is cosmetic.
func (c *Cart) Total() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.Price
	}
	return total
}

// Empty reports whether the cart holds no lines.
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// CartFromDetails rehydrates a cart from a pending transaction's active detail
// lines, one cart line per detail.
func CartFromDetails(details []shopapi.TransactionDetail) *Cart {
	cart := &Cart{}
	for _, d := range details {
		if d.IsActive != 1 {
			continue
		}
		cart.Lines = append(cart.Lines, CartLine{
			ServiceID:   d.Service.ID,
			Name:        d.Service.Name,
			Icon:        d.Service.Icon,
			Description: d.Description,
			Price:       d.Amount,
			Quantity:    1,
		})
	}
	return cart
}
