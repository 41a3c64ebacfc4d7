package server

import (
	"log"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	v3 "github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/api/v3"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/config"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/geo"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/importer"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/parser"
	"github.com/benrabah-salim-dev/mouhaB2B-sub000/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	v3     *v3.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "mouhab2b.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 地址补全客户端（可选）
	var geocoder importer.AddressLookup
	geoTimeout := time.Duration(cfg.Geo.TimeoutMS) * time.Millisecond
	if cfg.Geo.Enabled {
		geocoder = geo.NewClient(cfg.Geo.BaseURL, geoTimeout)
	}

	coordinator := importer.NewCoordinator(sqliteStore, sqliteStore, geocoder, sqliteStore, importer.Options{
		MovementPolicy: parseMovementPolicy(cfg.Import.MovementPolicy),
		FuzzyThreshold: cfg.Import.FuzzyThreshold,
		ScanDepth:      cfg.Import.ScanDepth,
		OnDuplicate:    parseDuplicatePolicy(cfg.Import.OnDuplicate),
		Atomic:         cfg.Import.Atomic,
		Snapshots:      cfg.Import.Snapshots,
		GeoTimeout:     geoTimeout,
	})

	v3Handler := v3.NewHandler(sqliteStore, coordinator)

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		v3:     v3Handler,
	}

	s.setupRoutes()

	return s
}

func parseMovementPolicy(v string) parser.MovementPolicy {
	if v == "lenient" {
		return parser.MovementPolicyLenient
	}
	return parser.MovementPolicyStrict
}

func parseDuplicatePolicy(v string) importer.DuplicatePolicy {
	if v == "skip" {
		return importer.DuplicateSkip
	}
	return importer.DuplicateOverwrite
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// V3 API 路由
	api := s.router.Group("/api")
	{
		s.v3.RegisterRoutes(api)
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
