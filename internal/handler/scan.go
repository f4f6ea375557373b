package handler

import (
	"net/http"
	"strconv"

	"github.com/TokenLens/riskgate/internal/model"
	"github.com/TokenLens/riskgate/internal/pkg/apperrors"
	"github.com/TokenLens/riskgate/internal/service"
	"github.com/gin-gonic/gin"
)

type ScanHandler struct {
	scanner *service.Scanner
}

func NewScanHandler(scanner *service.Scanner) *ScanHandler {
	return &ScanHandler{scanner: scanner}
}

// ScanWallet handles POST /v1/wallets/:address/scan
func (h *ScanHandler) ScanWallet(c *gin.Context) {
	var req model.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	if len(req.Tokens) == 0 {
		c.Error(apperrors.NewInvalidRequest("token list is empty"))
		return
	}

	result, err := h.scanner.ScanWallet(c.Request.Context(), c.Param("address"), req.Tokens, req.ForceRefresh)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// History handles GET /v1/wallets/:address/scans
func (h *ScanHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	scans, err := h.scanner.History(c.Request.Context(), c.Param("address"), limit)
	if err != nil {
		c.Error(err)
		return
	}
	if scans == nil {
		scans = []*model.ScanResult{}
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans})
}

// TokenRisk handles GET /v1/tokens/:address/risk
func (h *ScanHandler) TokenRisk(c *gin.Context) {
	verdict, err := h.scanner.TokenRisk(c.Request.Context(), c.Param("address"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

// InvalidateToken handles DELETE /v1/tokens/:address/cache
func (h *ScanHandler) InvalidateToken(c *gin.Context) {
	if err := h.scanner.InvalidateToken(c.Param("address")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats handles GET /v1/stats
func (h *ScanHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.scanner.Stats())
}
