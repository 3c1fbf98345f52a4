package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"cardgrader/internal/repository/cards"
)

var exportHeader = []interface{}{
	"ID", "Card Name", "Set Name", "Language", "Rarity",
	"TCGPlayer Price", "PSA 10 Price", "Price Delta", "Profit Potential (%)",
	"Last Updated", "Created At",
}

// ExportCards streams the whole table as an xlsx workbook.
func (that *Handler) ExportCards(c *gin.Context) {
	result, _, err := that.cardsRepo.List(c.Request.Context(), cards.Filter{})
	if err != nil {
		that.logger.Error("failed to list cards for export", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export cards"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		that.logger.Error("failed to write export header", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export cards"})
		return
	}

	for i, card := range result {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			card.ID, card.CardName, card.SetName, card.Language, card.Rarity,
			exportPrice(card.TCGPlayerPrice), exportPrice(card.PSA10Price),
			exportPrice(card.PriceDelta), exportPrice(card.ProfitPotential),
			card.LastUpdated.Format(time.RFC3339), card.CreatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			that.logger.Error("failed to write export row", "row", i, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export cards"})
			return
		}
	}

	filename := fmt.Sprintf("cards-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		that.logger.Error("failed to stream export", "error", err)
	}
}

func exportPrice(price *float64) interface{} {
	if price == nil {
		return nil
	}
	return *price
}
