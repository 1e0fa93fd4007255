package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/GooferByte/positions/internal/models"
	"github.com/GooferByte/positions/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Display carries the fixed-point factors used to render stored integers.
type Display struct {
	ShareScale      int64
	MinorUnitDigits int32
}

// Router wires all handlers.
func Router(svc *service.PositionService, display Display, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logMiddleware(logger))

	h := handler{svc: svc, display: display}
	r.POST("/transactions", h.createTransaction)
	r.GET("/positions/:portfolioId", h.portfolio)
	r.GET("/positions/:portfolioId/:symbol", h.position)
	r.GET("/positions/:portfolioId/:symbol/breakdown", h.breakdown)
	r.PUT("/classifications/:symbol", h.setClassification)
	r.GET("/classifications/:symbol", h.classification)
	return r
}

type handler struct {
	svc     *service.PositionService
	display Display
}

type transactionRequest struct {
	PortfolioID string     `json:"portfolioId" binding:"required"`
	Symbol      string     `json:"symbol" binding:"required"`
	Type        string     `json:"type" binding:"required"`
	Shares      string     `json:"shares" binding:"required"`
	Amount      string     `json:"amount" binding:"required"`
	Fees        string     `json:"fees"`
	Taxes       string     `json:"taxes"`
	ExecutedAt  *time.Time `json:"executedAt"`
	EventID     string     `json:"eventId"`
}

type classificationRequest struct {
	Assignments []assignmentRequest `json:"assignments" binding:"dive"`
}

type assignmentRequest struct {
	Category string `json:"category" binding:"required"`
	Weight   *int64 `json:"weight" binding:"required,gte=0"`
}

func (h handler) createTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	values, err := parseDecimals(map[string]string{
		"shares": req.Shares,
		"amount": req.Amount,
		"fees":   req.Fees,
		"taxes":  req.Taxes,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.svc.RecordTransaction(c.Request.Context(), service.RecordTransactionInput{
		PortfolioID:    req.PortfolioID,
		Symbol:         req.Symbol,
		Type:           req.Type,
		Shares:         values["shares"],
		Amount:         values["amount"],
		Fees:           values["fees"],
		Taxes:          values["taxes"],
		ExecutedAt:     derefTime(req.ExecutedAt),
		IdempotencyKey: req.EventID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.transactionJSON(*tx))
}

func (h handler) portfolio(c *gin.Context) {
	views, err := h.svc.GetPortfolio(c.Request.Context(), c.Param("portfolioId"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := []gin.H{}
	for _, v := range views {
		resp = append(resp, h.positionJSON(v))
	}
	c.JSON(http.StatusOK, gin.H{"positions": resp})
}

func (h handler) position(c *gin.Context) {
	var (
		view *models.PositionView
		err  error
	)
	if asOf := c.Query("asOf"); asOf != "" {
		day, perr := time.Parse("2006-01-02", asOf)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be a YYYY-MM-DD date"})
			return
		}
		view, err = h.svc.GetPositionAsOf(c.Request.Context(), c.Param("portfolioId"), c.Param("symbol"), day)
	} else {
		view, err = h.svc.GetPosition(c.Request.Context(), c.Param("portfolioId"), c.Param("symbol"))
	}
	if err != nil {
		writeError(c, err)
		return
	}
	resp := h.positionJSON(*view)
	txs := []gin.H{}
	for _, tx := range view.Transactions {
		txs = append(txs, h.transactionJSON(tx))
	}
	resp["transactions"] = txs
	c.JSON(http.StatusOK, resp)
}

func (h handler) breakdown(c *gin.Context) {
	views, err := h.svc.GetBreakdown(c.Request.Context(), c.Param("portfolioId"), c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := []gin.H{}
	for _, v := range views {
		item := h.positionJSON(v)
		item["category"] = v.Category
		item["weight"] = v.Weight
		resp = append(resp, item)
	}
	c.JSON(http.StatusOK, gin.H{"categories": resp})
}

func (h handler) setClassification(c *gin.Context) {
	var req classificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	assignments := make([]models.Assignment, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		assignments = append(assignments, models.Assignment{Category: a.Category, Weight: *a.Weight})
	}
	if err := h.svc.SetClassification(c.Request.Context(), c.Param("symbol"), assignments); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h handler) classification(c *gin.Context) {
	assignments, err := h.svc.GetClassification(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h handler) positionJSON(v models.PositionView) gin.H {
	resp := gin.H{
		"portfolioId":   v.PortfolioID,
		"symbol":        v.Symbol,
		"shares":        h.shares(v.Shares),
		"price":         nil,
		"marketValue":   h.money(v.MarketValue),
		"purchasePrice": h.money(v.PurchasePrice),
		"purchaseValue": h.money(v.PurchaseValue),
		"profitLoss":    h.money(v.ProfitLoss),
	}
	if v.HasPrice {
		resp["price"] = h.money(v.Price)
	}
	return resp
}

func (h handler) transactionJSON(tx models.Transaction) gin.H {
	return gin.H{
		"id":          tx.ID,
		"portfolioId": tx.PortfolioID,
		"symbol":      tx.Symbol,
		"type":        tx.Type,
		"shares":      h.shares(tx.Shares),
		"amount":      h.money(tx.Amount),
		"fees":        h.money(tx.Fees),
		"taxes":       h.money(tx.Taxes),
		"executedAt":  tx.ExecutedAt,
	}
}

func (h handler) money(minor int64) string {
	return decimal.New(minor, -h.display.MinorUnitDigits).StringFixed(h.display.MinorUnitDigits)
}

func (h handler) shares(scaled int64) string {
	return decimal.NewFromInt(scaled).Div(decimal.NewFromInt(h.display.ShareScale)).String()
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseDecimals(fields map[string]string) (map[string]decimal.Decimal, error) {
	res := make(map[string]decimal.Decimal, len(fields))
	for name, val := range fields {
		if val == "" {
			res[name] = decimal.Zero
			continue
		}
		num, err := decimal.NewFromString(val)
		if err != nil {
			return nil, fmt.Errorf("%s must be a decimal string", name)
		}
		res[name] = num
	}
	return res, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func logMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"status":   c.Writer.Status(),
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"latency":  time.Since(start).String(),
			"clientIP": c.ClientIP(),
		}).Info("request completed")
	}
}
