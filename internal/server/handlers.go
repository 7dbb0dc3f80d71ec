package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/coindcx-tracker/internal/refresh"
	"github.com/rickgao/coindcx-tracker/internal/snapshot"
	"github.com/rickgao/coindcx-tracker/internal/version"
)

// liveData serves GET|POST /livedata?symbol=<market>. The symbol may come
// from the query string or a form body.
func (s *Server) liveData(c *gin.Context) {
	market := c.Query("symbol")
	if market == "" {
		market = c.PostForm("symbol")
	}
	if market == "" {
		writeError(c, http.StatusBadRequest, "missing 'symbol' parameter")
		return
	}

	snap, err := s.deps.Snapshots.Query(c.Request.Context(), market)
	if err != nil {
		c.Error(err)

		var obe *snapshot.OrderBookError
		switch {
		case errors.Is(err, snapshot.ErrUnknownMarket):
			writeError(c, http.StatusNotFound, err.Error())
		case errors.As(err, &obe):
			writeError(c, http.StatusBadGateway, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			writeError(c, http.StatusGatewayTimeout, err.Error())
		case errors.Is(err, context.Canceled):
			// Client went away.
			c.Abort()
		default:
			writeError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, newLiveDataResponse(snap))
}

// pairs serves GET /pairs.
func (s *Server) pairs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pairs": s.deps.Snapshots.ListPairs()})
}

// tickers serves GET /ticker.
func (s *Server) tickers(c *gin.Context) {
	c.JSON(http.StatusOK, newTickerResponses(s.deps.Snapshots.ListTickers(), time.Now()))
}

// health serves GET /health. It reports 503 until market data has loaded
// and after the engine has stopped.
func (s *Server) health(c *gin.Context) {
	resp := healthResponse{
		Status:  "ok",
		Version: version.Get(),
		Markets: len(s.deps.Snapshots.ListPairs()),
		Tickers: len(s.deps.Snapshots.ListTickers()),
	}

	code := http.StatusOK
	if s.deps.Engine != nil {
		state := s.deps.Engine.State()
		stats := s.deps.Engine.Stats()

		resp.Engine = state.String()
		resp.Cycles = stats.Cycles
		resp.LastMarketRefresh = timePtr(stats.LastMarketSuccess)
		resp.LastTickerRefresh = timePtr(stats.LastTickerSuccess)

		switch {
		case state == refresh.StateStopped:
			resp.Status = "stopped"
			code = http.StatusServiceUnavailable
		case stats.LastMarketSuccess.IsZero():
			resp.Status = "starting"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, resp)
}

func writeError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, errorResponse{
		Error:            msg,
		RequestTimestamp: time.Now().UnixNano(),
	})
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
