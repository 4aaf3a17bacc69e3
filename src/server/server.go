package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"crypto-tracker/src/helpers"
	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"
	"crypto-tracker/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

// IAppStatus exposes the lifecycle flags the status endpoint reports.
type IAppStatus interface {
	IsOffline() bool
	IsLoading() bool
	ShowOfflineMessage() bool
}

// -----------------------------------------------------------------------------

type APIServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Store     interfaces.IDatabase
	Catalog   interfaces.ICatalogClient
	Favorites interfaces.IFavoritesService
	Network   interfaces.IConnectivityMonitor
	History   *utils.AlertHistory
	Status    IAppStatus

	engine *gin.Engine

	// WebSocket clients. The map is owned by the hub loop; handlers read the
	// connection count through the atomic counter instead.
	clients     map[*Client]struct{}
	clientCount atomic.Int32
	broadcast   chan *models.MLatestData
	register    chan *Client
	unregister  chan *Client
}

var _ interfaces.IDataExchanger = (*APIServer)(nil)

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(
	cfg *models.MConfig,
	store interfaces.IDatabase,
	catalog interfaces.ICatalogClient,
	favs interfaces.IFavoritesService,
	netMon interfaces.IConnectivityMonitor,
	history *utils.AlertHistory,
	status IAppStatus,
) *APIServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:    cfg,
		Logger:    logger.NewLogger(cfg, "APIServer"),
		Store:     store,
		Catalog:   catalog,
		Favorites: favs,
		Network:   netMon,
		History:   history,
		Status:    status,
		engine:    gin.Default(),
		clients:   make(map[*Client]struct{}),
		// Buffered so alert delivery never blocks on the hub loop
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	s.engine.GET("/api/cryptocurrencies", s.getCryptocurrencies)
	s.engine.GET("/api/cryptocurrencies/search", s.searchCryptocurrencies)
	s.engine.GET("/api/cryptocurrencies/:id/history", s.getPriceHistory)

	s.engine.GET("/api/favorites", s.getFavorites)
	s.engine.POST("/api/favorites/:id", s.addFavorite)
	s.engine.DELETE("/api/favorites/:id", s.removeFavorite)

	s.engine.GET("/api/alerts/recent", s.getRecentAlerts)
	s.engine.GET("/api/status", s.getStatus)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.runHub()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

// getCryptocurrencies serves the locally cached catalog. The store is the
// only source here; records may be stale but the endpoint works offline.
func (s *APIServer) getCryptocurrencies(c *gin.Context) {
	records, err := s.Store.FetchAll()
	if err != nil {
		s.Logger.Error("FetchAll failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// -----------------------------------------------------------------------------

func (s *APIServer) searchCryptocurrencies(c *gin.Context) {
	query := c.Query("query")

	results, err := s.Catalog.Search(c.Request.Context(), query)
	if err != nil {
		s.respondCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPriceHistory(c *gin.Context) {
	coinID := c.Param("id")
	days := c.DefaultQuery("days", string(models.PeriodWeek))

	if !models.MTimePeriod(days).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be one of 1, 7, 30"})
		return
	}

	points, err := s.Catalog.FetchPriceHistory(c.Request.Context(), coinID, days)
	if err != nil {
		s.respondCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, points)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"favorites": s.Favorites.List()})
}

// -----------------------------------------------------------------------------

func (s *APIServer) addFavorite(c *gin.Context) {
	id := c.Param("id")
	if err := s.Favorites.Add(id); err != nil {
		s.Logger.Error("Failed to add favorite %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": s.Favorites.List()})
}

// -----------------------------------------------------------------------------

func (s *APIServer) removeFavorite(c *gin.Context) {
	id := c.Param("id")
	if err := s.Favorites.Remove(id); err != nil {
		s.Logger.Error("Failed to remove favorite %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": s.Favorites.List()})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getRecentAlerts(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	c.JSON(http.StatusOK, gin.H{"alerts": s.History.Latest(limit)})
}

// -----------------------------------------------------------------------------

// getStatus reports the app state, distinguishing "offline with cached data"
// from "offline and never loaded anything".
func (s *APIServer) getStatus(c *gin.Context) {
	online := s.Network.IsConnected()

	records, err := s.Store.FetchAll()
	hasData := err == nil && len(records) > 0

	state := "ok"
	switch {
	case !online && !hasData:
		state = "no_data_offline"
	case !online:
		state = "offline_cached"
	case s.Status != nil && s.Status.IsLoading():
		state = "loading"
	}

	resp := gin.H{
		"state":       state,
		"online":      online,
		"has_data":    hasData,
		"records":     len(records),
		"connections": s.clientCount.Load(),
	}
	if s.Status != nil {
		resp["loading"] = s.Status.IsLoading()
		resp["show_offline_message"] = s.Status.ShowOfflineMessage()
	}

	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

// respondCatalogError maps the error taxonomy onto HTTP statuses.
func (s *APIServer) respondCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, helpers.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, helpers.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, helpers.ErrRateLimited):
		c.Header("Retry-After", "30")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
