package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sparkos/internal/types"
)

func (s *Server) listInventory(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Store().Inventory())
}

func (s *Server) listLowStock(c *gin.Context) {
	low := s.engine.LowStockItems()
	if low == nil {
		low = []types.InventoryItem{}
	}
	c.JSON(http.StatusOK, low)
}

func (s *Server) addInventoryItem(c *gin.Context) {
	var item types.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	added, err := s.engine.AddItem(item)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (s *Server) updateInventoryItem(c *gin.Context) {
	var item types.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	item.ID = c.Param("id")
	if err := s.engine.UpdateItem(item); err != nil {
		fail(c, err)
		return
	}
	// Echo the stored record; stock is owned by the transaction path and
	// may differ from the request body.
	for _, stored := range s.engine.Store().Inventory() {
		if stored.ID == item.ID {
			c.JSON(http.StatusOK, stored)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

// applyTransaction moves stock. An OUT that would overdraw is rejected with
// 409 and no state change.
func (s *Server) applyTransaction(c *gin.Context) {
	var body struct {
		Type   types.TransactionType `json:"type" binding:"required"`
		Amount int                   `json:"amount" binding:"required"`
		Notes  string                `json:"notes"`
		PIC    string                `json:"pic"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	tx, err := s.engine.ApplyTransaction(c.Param("id"), body.Type, body.Amount, body.Notes, body.PIC)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (s *Server) listTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Store().Transactions())
}
