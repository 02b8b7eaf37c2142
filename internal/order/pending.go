package order

import (
	"sync"

	"github.com/benbell/shopbot/internal/domain"
)

// Table is the in-memory registry of orders awaiting an operator decision.
// Entries have no expiry: an order the operator never acts on stays pending
// for the life of the process.
type Table struct {
	mu     sync.Mutex
	orders map[string]domain.PendingOrder
}

// NewTable returns an empty pending order table.
func NewTable() *Table {
	return &Table{orders: make(map[string]domain.PendingOrder)}
}

// Put registers an order under its token. Resubmitting the same token
// replaces the previous entry, so at most one live entry exists per token.
func (t *Table) Put(order domain.PendingOrder) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.orders[order.Token] = order
}

// Resolve removes and returns the order for the given token. The second call
// for the same token reports false: the first operator decision wins.
func (t *Table) Resolve(token string) (domain.PendingOrder, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	order, ok := t.orders[token]
	if ok {
		delete(t.orders, token)
	}
	return order, ok
}

// Len reports how many orders are currently pending.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.orders)
}
