package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CampusEat/backend/go/internal/llm"
	"CampusEat/backend/go/internal/models"
	"CampusEat/backend/go/pkg/logger"
)

// ReportSource 是引擎读取窗口内报告的依赖。
type ReportSource interface {
	ReportsInWindow(universityID uint, since time.Time) ([]models.CampusReport, error)
}

// SummarySink 是引擎写入摘要的依赖。
type SummarySink interface {
	SaveSummary(summary *models.CampusSummary) error
}

// SummaryCache 是可选的最新摘要缓存。缓存失败只记日志，不影响运行结果。
type SummaryCache interface {
	SetLatest(ctx context.Context, summary *models.CampusSummary, ttl time.Duration) error
}

// Options 汇总了引擎的时间参数。零值字段回落到参考节奏。
type Options struct {
	Window      time.Duration // 统计最近报告的滑动窗口
	Validity    time.Duration // 新摘要的有效期
	Timeout     time.Duration // 单次生成调用的超时
	Temperature float32       // 生成调用的采样温度
}

// Engine 为单个大学执行一次摘要生成：取窗口内报告，调用文本生成服务，
// 解析结构化输出并落库。任何一步失败都不会产生部分写入。
type Engine struct {
	reports     ReportSource
	summaries   SummarySink
	cache       SummaryCache
	client      llm.LLM
	window      time.Duration
	validity    time.Duration
	timeout     time.Duration
	temperature float32
	logger      *logger.Logger
	now         func() time.Time
}

// NewEngine 创建一个新的摘要引擎。cache 允许为 nil。
func NewEngine(reports ReportSource, summaries SummarySink, cache SummaryCache, client llm.LLM, opts Options, log *logger.Logger) *Engine {
	if opts.Window <= 0 {
		opts.Window = 10 * time.Minute
	}
	if opts.Validity <= 0 {
		opts.Validity = 10 * time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.3
	}
	return &Engine{
		reports:     reports,
		summaries:   summaries,
		cache:       cache,
		client:      client,
		window:      opts.Window,
		validity:    opts.Validity,
		timeout:     opts.Timeout,
		temperature: opts.Temperature,
		logger:      log,
		now:         time.Now,
	}
}

// ProcessSummary 为指定大学执行一次摘要生成。
// 窗口内没有报告时是幂等的 no-op；生成或解析失败时不写任何摘要，
// 错误返回给调用方记录，等下一个 tick 自然重试。
func (e *Engine) ProcessSummary(ctx context.Context, universityID uint) error {
	now := e.now()
	since := now.Add(-e.window)

	reports, err := e.reports.ReportsInWindow(universityID, since)
	if err != nil {
		return fmt.Errorf("读取窗口内报告失败: %w", err)
	}

	if len(reports) == 0 {
		// 不为空窗口制造垃圾摘要。
		e.logger.WithPayload(map[string]interface{}{
			"university_id": universityID,
		}).Debug("窗口内没有报告，跳过摘要生成")
		return nil
	}

	e.logger.WithPayload(map[string]interface{}{
		"university_id": universityID,
		"report_count":  len(reports),
	}).Info("开始为活跃大学生成摘要")

	entries, err := e.generate(ctx, reports)
	if err != nil {
		return err
	}

	breakdown, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("序列化 breakdown 失败: %w", err)
	}

	summary := &models.CampusSummary{
		UniversityID: universityID,
		Breakdown:    breakdown,
		ValidUntil:   now.Add(e.validity),
	}

	if err := e.summaries.SaveSummary(summary); err != nil {
		return fmt.Errorf("保存摘要失败: %w", err)
	}

	// 缓存是尽力而为：写入失败时查询方自然回落到数据库。
	if e.cache != nil {
		if err := e.cache.SetLatest(ctx, summary, e.validity); err != nil {
			e.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "cache_error"}).
				Warn("写入最新摘要缓存失败")
		}
	}

	e.logger.WithPayload(map[string]interface{}{
		"university_id":  universityID,
		"category_count": len(entries),
		"valid_until":    summary.ValidUntil,
	}).Info("摘要已保存")

	return nil
}

// generate 调用文本生成服务并解析其结构化输出。
// confidence 与 reportCount 是模型的原样输出，这里只校验形状，不校验数值。
func (e *Engine) generate(ctx context.Context, reports []models.CampusReport) ([]models.SummaryEntry, error) {
	batch := RenderBatch(reports)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.client.GenerateContent(callCtx, &llm.ChatRequest{
		System:      SystemPrompt,
		Prompt:      BuildPrompt(batch),
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("文本生成调用失败: %w", err)
	}

	// 原始输出落到 debug 日志，便于审计模型行为。
	e.logger.WithPayload(map[string]interface{}{
		"raw_response": raw,
	}).Debug("收到文本生成服务的原始输出")

	entries, err := ParseBreakdown(raw)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
