package api

import (
	"fmt"
	"time"

	"CampusEat/backend/go/internal/config"
	"CampusEat/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

// SetupRouter 配置和返回一个 Gin 引擎实例。
func SetupRouter(h *Handler, jwtSecret string, mw config.MiddlewareConfig) (*gin.Engine, error) {
	// 使用默认中间件 (logger, recovery) 创建一个 Gin 引擎。
	r := gin.Default()

	// 创建认证中间件实例
	authMiddleware := AuthMiddleware(jwtSecret)

	// 使用 v1 版本对 API 进行分组
	apiV1 := r.Group("/api/v1")
	{
		// 校园实时状况路由组，所有接口都要求认证
		status := apiV1.Group("/campus/status")
		status.Use(authMiddleware)

		// 按配置为该组叠加限流中间件
		if mw.RateLimiter.Enabled {
			limiter, err := createRateLimiter(mw.RateLimiter)
			if err != nil {
				return nil, fmt.Errorf("创建限流器失败: %w", err)
			}
			status.Use(RateLimitMiddleware(limiter))
		}

		{
			status.POST("", h.CreateReport)
			status.GET("/summary/latest", h.GetLatestSummary)
			status.GET("/prediction", h.GetPrediction)
		}
	}

	return r, nil
}

// createRateLimiter 根据配置初始化一个限流器。
func createRateLimiter(cfg config.RateLimiterConfig) (ratelimiter.RateLimiter, error) {
	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = "tokenBucket"
	}

	switch algorithm {
	case "tokenBucket":
		return ratelimiter.NewTokenBucket(cfg.TokenBucket.Rate, cfg.TokenBucket.Capacity), nil
	case "fixedWindow":
		window, err := time.ParseDuration(cfg.FixedWindow.Window)
		if err != nil {
			return nil, fmt.Errorf("无效的固定窗口时长: %w", err)
		}
		return ratelimiter.NewFixedWindowCounter(cfg.FixedWindow.Limit, window), nil
	default:
		return nil, fmt.Errorf("不支持的限流算法: %s", algorithm)
	}
}
