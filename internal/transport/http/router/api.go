package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-gin-shop-api/internal/core/config"
	"go-gin-shop-api/internal/core/server"
	"go-gin-shop-api/internal/domain"
	mdw "go-gin-shop-api/internal/transport/http/middleware"
	resp "go-gin-shop-api/internal/transport/http/response"
)

const (
	defaultMaxInFlight = 300
	defaultMaxBodyMB   = 64 // 12 张 5MB 图片 + 表单开销
	defaultTimeout     = 10 * time.Second
)

type Deps struct {
	Log      *zap.Logger
	HTTP     config.HTTP
	Verifier mdw.TokenVerifier
	Users    domain.UserRepository
	Modules  []APIModule
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewRouter()

	maxInFlight := d.HTTP.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	maxBodyMB := d.HTTP.MaxBodyMB
	if maxBodyMB <= 0 {
		maxBodyMB = defaultMaxBodyMB
	}
	timeout := time.Duration(d.HTTP.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	// 中间件（顺序有意义）
	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(maxInFlight),
		mdw.MaxBodyBytes(maxBodyMB<<20),
		mdw.Timeout(timeout),
		server.Recovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		server.CORS(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Fail(http.StatusNotFound, "Route not found.", ""))
	})

	api := r.Group("/api")
	authed := api.Group("", mdw.Authenticate(d.Verifier, d.Users, d.Log))

	reg := &Registry{}
	reg.Register(d.Modules...)
	reg.MountAll(api, authed)
	return r
}
