package api

import (
	"bytes"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tradejournal/internal/analytics"
	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/export"
	"tradejournal/internal/images"
	"tradejournal/internal/journal"
	"tradejournal/internal/models"
	"tradejournal/internal/registry"
)

// createTradeRequest is the body of POST /api/trades. Field names follow
// the trade record's JSON keys.
type createTradeRequest struct {
	Time      string   `json:"time"`
	Context   string   `json:"context" binding:"required"`
	Method    string   `json:"method" binding:"required"`
	TradeType string   `json:"trade_type"`
	Emotion   string   `json:"emotion"`
	Result    string   `json:"result" binding:"required"`
	RValue    *float64 `json:"rValue"`
	Remark    string   `json:"remark"`
	// Image is a base64 payload or data URL.
	Image string `json:"img"`
}

type createMethodRequest struct {
	Name string `json:"name" binding:"required"`
}

// GET /api/report[?value_per_r=N]
func (s *Server) getReport(c *gin.Context) {
	v := c.Query("value_per_r")
	if v == "" {
		c.JSON(http.StatusOK, s.svc.Report())
		return
	}

	valuePerR, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(valuePerR) || math.IsInf(valuePerR, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value_per_r must be a finite number"})
		return
	}
	params := s.svc.Params()
	params.ValuePerR = valuePerR
	c.JSON(http.StatusOK, analytics.Compute(s.svc.Trades(), registry.New(s.svc.Methods()), params))
}

// GET /api/trades[?order=newest&limit=N]
func (s *Server) listTrades(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	var trades []models.Trade
	if c.Query("order") == "newest" {
		trades = s.svc.RecentTrades(limit)
	} else {
		trades = s.svc.Trades()
		if limit > 0 && len(trades) > limit {
			trades = trades[:limit]
		}
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
}

// GET /api/trades/:id
func (s *Server) getTrade(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, found := s.svc.Trade(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.ErrTradeNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// POST /api/trades
func (s *Server) createTrade(c *gin.Context) {
	var req createTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, ok := models.ParseResult(req.Result)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "result must be win, loss or breakeven"})
		return
	}

	res, err := s.svc.AddTrade(c.Request.Context(), journal.NewTrade{
		Time:         req.Time,
		Context:      req.Context,
		Method:       req.Method,
		TradeType:    req.TradeType,
		Emotion:      req.Emotion,
		Result:       result,
		RValue:       req.RValue,
		Remark:       req.Remark,
		ImageDataURL: req.Image,
	})
	if err != nil && res.Trade.ID == 0 {
		writeError(c, err)
		return
	}

	body := gin.H{"trade": res.Trade}
	if res.ImageErr != nil {
		body["image_error"] = res.ImageErr.Error()
	}
	if err != nil {
		body["error"] = err.Error()
		c.JSON(http.StatusInternalServerError, body)
		return
	}
	c.JSON(http.StatusCreated, body)
}

// DELETE /api/trades/:id
func (s *Server) deleteTrade(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.svc.DeleteTrade(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/trades
func (s *Server) clearTrades(c *gin.Context) {
	n, err := s.svc.ClearTrades(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// GET /api/methods
func (s *Server) listMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": s.svc.Methods()})
}

// POST /api/methods
func (s *Server) createMethod(c *gin.Context) {
	var req createMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.svc.AddMethod(c.Request.Context(), req.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"methods": s.svc.Methods()})
}

// DELETE /api/methods/:name
func (s *Server) deleteMethod(c *gin.Context) {
	if err := s.svc.RemoveMethod(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"methods": s.svc.Methods()})
}

// GET /api/images/:ref[?format=dataurl]
func (s *Server) getImage(c *gin.Context) {
	ref := c.Param("ref")
	ctx := c.Request.Context()

	if c.Query("format") == "dataurl" {
		url := s.svc.ImageDataURL(ctx, ref)
		if url == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": apperrors.ErrImageNotFound.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data_url": url})
		return
	}

	data, ok := s.svc.Image(ctx, ref)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.ErrImageNotFound.Error()})
		return
	}
	c.Data(http.StatusOK, images.ContentType(ref), data)
}

// GET /api/export.csv
func (s *Server) exportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteTradesCSV(&buf, s.svc.Trades()); err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.CSVFileName(time.Now())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}

// writeError maps domain errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidTrade), apperrors.Is(err, apperrors.ErrEmptyMethod):
		status = http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrTradeNotFound), apperrors.Is(err, apperrors.ErrMethodNotFound),
		apperrors.Is(err, apperrors.ErrNoData), apperrors.Is(err, apperrors.ErrImageNotFound):
		status = http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrDuplicateMethod):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
