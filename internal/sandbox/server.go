package sandbox

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/TaraJura/trade-bot/internal/domain"
)

var log = logrus.WithField("module", "sandbox")

// Server 模拟后端的 HTTP 层
type Server struct {
	bot    *Bot
	prices *PriceTable
}

// NewServer bot 与 prices 共用同一张价格表
func NewServer(bot *Bot, prices *PriceTable) *Server {
	return &Server{bot: bot, prices: prices}
}

// NewDefault 默认价格表 + 新机器人
func NewDefault(jitter float64, seed int64) *Server {
	prices := NewPriceTable(DefaultPrices, jitter, seed)
	return NewServer(NewBot(prices), prices)
}

// Bot 底层模拟机器人
func (s *Server) Bot() *Bot { return s.bot }

// Router 注册全部 /api 路由
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api")
	api.GET("/status", s.handleStatus)
	api.POST("/start", s.handleStart)
	api.POST("/stop", s.handleStop)
	api.GET("/symbols", s.handleSymbols)
	api.GET("/balance", s.handleBalance)
	api.GET("/config", s.handleConfigGet)
	api.POST("/config", s.handleConfigSave)
	api.GET("/statistics", s.handleStatistics)

	api.GET("/positions", s.handlePositions)
	api.POST("/positions", s.handlePositionCreate)
	api.PUT("/positions/:symbol", s.handlePositionUpdate)
	api.DELETE("/positions/:symbol", s.handlePositionClose)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	st := s.bot.Status()
	if st.Message != "" {
		c.JSON(http.StatusOK, gin.H{"is_running": false, "message": st.Message})
		return
	}
	c.JSON(http.StatusOK, st)
}

// startBody test_mode 缺省为 true
type startBody struct {
	Strategy string `json:"strategy"`
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	TestMode *bool  `json:"test_mode"`
}

func (s *Server) handleStart(c *gin.Context) {
	var body startBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, fail("invalid request body: "+err.Error()))
		return
	}
	req := domain.StartRequest{
		Strategy: body.Strategy,
		Symbol:   body.Symbol,
		Interval: body.Interval,
		TestMode: true,
	}
	if req.Strategy == "" {
		req.Strategy = "combined"
	}
	if req.Symbol == "" {
		req.Symbol = "BTCUSDT"
	}
	if req.Interval == "" {
		req.Interval = "15m"
	}
	if body.TestMode != nil {
		req.TestMode = *body.TestMode
	}

	res := s.bot.Start(req)
	if res.Success {
		log.Infof("bot started strategy=%s symbol=%s interval=%s test_mode=%v", req.Strategy, req.Symbol, req.Interval, req.TestMode)
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleStop(c *gin.Context) {
	c.JSON(http.StatusOK, s.bot.Stop())
}

func (s *Server) handleSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, domain.SymbolsResponse{Symbols: s.prices.Symbols()})
}

func (s *Server) handleBalance(c *gin.Context) {
	c.JSON(http.StatusOK, domain.BalancesResponse{Balances: s.bot.Balances()})
}

func (s *Server) handleConfigGet(c *gin.Context) {
	c.JSON(http.StatusOK, s.bot.Config())
}

func (s *Server) handleConfigSave(c *gin.Context) {
	var req domain.ConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail("invalid request body: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, s.bot.SaveConfig(req))
}

func (s *Server) handleStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, s.bot.Statistics())
}

func (s *Server) handlePositions(c *gin.Context) {
	c.JSON(http.StatusOK, domain.PositionsResponse{Positions: s.bot.Positions()})
}

func (s *Server) handlePositionCreate(c *gin.Context) {
	var req domain.CreatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail("invalid request body: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, s.bot.CreatePosition(req))
}

func (s *Server) handlePositionUpdate(c *gin.Context) {
	var req domain.UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail("invalid request body: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, s.bot.UpdatePosition(c.Param("symbol"), req))
}

func (s *Server) handlePositionClose(c *gin.Context) {
	c.JSON(http.StatusOK, s.bot.ClosePosition(c.Param("symbol")))
}
