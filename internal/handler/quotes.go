package handler

import (
	"net/http"

	"github.com/TokenLens/riskgate/internal/service"
	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	pricing *service.Pricing
}

func NewQuoteHandler(pricing *service.Pricing) *QuoteHandler {
	return &QuoteHandler{pricing: pricing}
}

// GetQuote handles GET /v1/quotes/:symbol
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	force := c.Query("refresh") == "true"

	quote, err := h.pricing.GetQuote(c.Request.Context(), c.Param("symbol"), force)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
