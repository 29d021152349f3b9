package api

import (
	"context"
	"errors"
	"net/http"

	"CampusEat/backend/go/internal/campus_status_service/service"
	"CampusEat/backend/go/internal/models"

	"github.com/gin-gonic/gin"
)

// StatusService 是 Handler 依赖的业务接口，由 service.Service 实现。
type StatusService interface {
	CreateReport(ctx context.Context, userID uint, input *service.CreateReportInput) (*models.CampusReport, error)
	GetLatestSummary(ctx context.Context, userID uint) (*models.CampusSummary, error)
	GetPrediction(ctx context.Context, userID uint, day models.DayOfWeek) (*service.PredictionResult, error)
}

// Handler 封装了所有 API endpoint 的处理函数。
type Handler struct {
	service StatusService
}

// NewHandler 创建一个新的 Handler 实例。
func NewHandler(s StatusService) *Handler {
	return &Handler{service: s}
}

// currentUserID 从 JWT 中间件写入的上下文里取出当前用户 ID。
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// --- Report Handlers ---

// CreateReportRequest 定义了提交报告请求的 JSON 结构。
type CreateReportRequest struct {
	Content          string `json:"content" binding:"required,max=500"`
	Category         string `json:"category" binding:"required"`
	WeatherCondition string `json:"weatherCondition"`
}

// CreateReport 处理实时报告的提交请求。
func (h *Handler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无法获取当前用户信息"})
		return
	}

	report, err := h.service.CreateReport(c.Request.Context(), userID, &service.CreateReportInput{
		Content:          req.Content,
		Category:         models.ReportCategory(req.Category),
		WeatherCondition: req.WeatherCondition,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// --- Summary & Prediction Handlers ---

// GetLatestSummary 返回当前用户所属大学的最新摘要；还没有摘要时返回 null。
func (h *Handler) GetLatestSummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无法获取当前用户信息"})
		return
	}

	summary, err := h.service.GetLatestSummary(c.Request.Context(), userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	// summary 为 nil 时序列化为 null，与前端的空态判断约定一致。
	c.JSON(http.StatusOK, summary)
}

// GetPrediction 返回当前用户所属大学在 ?day=MON..SUN 指定星期的预测。
func (h *Handler) GetPrediction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无法获取当前用户信息"})
		return
	}

	day := models.DayOfWeek(c.Query("day"))

	result, err := h.service.GetPrediction(c.Request.Context(), userID, day)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// writeServiceError 把业务错误映射成 HTTP 状态码。
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUniversityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidDayOfWeek),
		errors.Is(err, service.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
