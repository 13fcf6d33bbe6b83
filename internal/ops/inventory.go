package ops

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"sparkos/internal/logging"
	"sparkos/internal/types"
)

// AddItem inserts a new inventory item.
func (e *Engine) AddItem(item types.InventoryItem) (types.InventoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Category == "" {
		item.Category = types.CategoryAccessories
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	item.LastUpdated = time.Now().Format(time.RFC3339)

	items := append(e.store.Inventory(), item)
	if err := e.store.SaveInventory(items); err != nil {
		return types.InventoryItem{}, err
	}

	logging.Ops("Inventory item added: %s (%s, stock=%d)", item.ID, item.Name, item.Stock)
	return item, nil
}

// UpdateItem replaces an item's descriptive fields wholesale, keyed by ID.
// Stock still only moves through ApplyTransaction.
func (e *Engine) UpdateItem(item types.InventoryItem) error {
	items := e.store.Inventory()
	for i := range items {
		if items[i].ID == item.ID {
			item.Stock = items[i].Stock
			item.LastUpdated = time.Now().Format(time.RFC3339)
			items[i] = item
			if err := e.store.SaveInventory(items); err != nil {
				return err
			}
			logging.Ops("Inventory item updated: %s (%s)", item.ID, item.Name)
			return nil
		}
	}
	return fmt.Errorf("item %s: %w", item.ID, ErrNotFound)
}

// ApplyTransaction applies one IN/OUT movement to an item and appends an
// immutable log entry. An OUT that would drive stock negative is rejected
// before any mutation, leaving both the item and the log unchanged. This is
// the only enforced stock invariant in the system.
func (e *Engine) ApplyTransaction(itemID string, direction types.TransactionType, amount int, notes, pic string) (types.InventoryTransaction, error) {
	if amount <= 0 {
		return types.InventoryTransaction{}, fmt.Errorf("amount %d: %w", amount, ErrInvalidAmount)
	}

	items := e.store.Inventory()
	var item *types.InventoryItem
	for i := range items {
		if items[i].ID == itemID {
			item = &items[i]
			break
		}
	}
	if item == nil {
		return types.InventoryTransaction{}, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}

	if direction == types.TransactionOut && item.Stock-amount < 0 {
		logging.Audit().StockMove(itemID, string(direction), amount, false, ErrInsufficientStock.Error())
		return types.InventoryTransaction{}, fmt.Errorf(
			"item %s: stock %d, requested %d: %w", item.Name, item.Stock, amount, ErrInsufficientStock)
	}

	if direction == types.TransactionIn {
		item.Stock += amount
	} else {
		item.Stock -= amount
	}
	item.LastUpdated = time.Now().Format(time.RFC3339)

	tx := types.InventoryTransaction{
		ID:       uuid.NewString(),
		ItemID:   item.ID,
		ItemName: item.Name,
		Type:     direction,
		Amount:   amount,
		Date:     time.Now().Format(time.RFC3339),
		Notes:    notes,
		PIC:      pic,
	}

	if err := e.store.SaveInventory(items); err != nil {
		return types.InventoryTransaction{}, err
	}
	if err := e.store.SaveTransactions(append(e.store.Transactions(), tx)); err != nil {
		return types.InventoryTransaction{}, err
	}

	logging.Ops("Stock %s: %s x%d (now %d)", direction, item.Name, amount, item.Stock)
	logging.Audit().StockMove(itemID, string(direction), amount, true, "")
	return tx, nil
}

// FindItemByName returns the first inventory item with a matching name.
func (e *Engine) FindItemByName(name string) (types.InventoryItem, bool) {
	for _, item := range e.store.Inventory() {
		if item.Name == name {
			return item, true
		}
	}
	return types.InventoryItem{}, false
}

// LowStockItems returns every item at or under its reorder threshold.
func (e *Engine) LowStockItems() []types.InventoryItem {
	var low []types.InventoryItem
	for _, item := range e.store.Inventory() {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	return low
}
