package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"CampusEat/backend/go/internal/llm"
	"CampusEat/backend/go/internal/models"
	"CampusEat/backend/go/pkg/logger"

	"github.com/sirupsen/logrus"
)

func init() {
	logger.Init(logrus.PanicLevel)
}

// fakeReportSource 用内存切片模拟报告存储。
// 和真实存储的 SQL 条件一致：只返回 created_at 严格大于 since 的行。
type fakeReportSource struct {
	reports   []models.CampusReport
	lastSince time.Time
	err       error
}

func (f *fakeReportSource) ReportsInWindow(universityID uint, since time.Time) ([]models.CampusReport, error) {
	f.lastSince = since
	if f.err != nil {
		return nil, f.err
	}
	var out []models.CampusReport
	for _, r := range f.reports {
		if r.UniversityID == universityID && r.CreatedAt.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeSummarySink struct {
	saved []*models.CampusSummary
	err   error
}

func (f *fakeSummarySink) SaveSummary(s *models.CampusSummary) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, s)
	return nil
}

type fakeLLM struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeLLM) GenerateContent(ctx context.Context, req *llm.ChatRequest) (string, error) {
	f.calls++
	f.lastPrompt = req.Prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestEngine(src *fakeReportSource, sink *fakeSummarySink, client *fakeLLM, now time.Time) *Engine {
	e := NewEngine(src, sink, nil, client, Options{
		Window:   10 * time.Minute,
		Validity: 10 * time.Minute,
		Timeout:  time.Second,
	}, logger.New("test", "", ""))
	e.now = func() time.Time { return now }
	return e
}

func TestProcessSummary_EmptyWindowIsNoOp(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeReportSource{}
	sink := &fakeSummarySink{}
	client := &fakeLLM{}

	e := newTestEngine(src, sink, client, now)

	if err := e.ProcessSummary(context.Background(), 1); err != nil {
		t.Fatalf("ProcessSummary() error = %v", err)
	}
	if client.calls != 0 {
		t.Error("Expected no LLM call for an empty window")
	}
	if len(sink.saved) != 0 {
		t.Error("Expected no summary written for an empty window")
	}
}

func TestProcessSummary_GroupedReports(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeReportSource{}
	for i := 0; i < 3; i++ {
		src.reports = append(src.reports, models.CampusReport{
			UniversityID: 1,
			Category:     models.CategoryTraffic,
			Content:      "셔틀 대기열 김",
			CreatedAt:    now.Add(-5 * time.Minute),
		})
	}
	for i := 0; i < 2; i++ {
		src.reports = append(src.reports, models.CampusReport{
			UniversityID: 1,
			Category:     models.CategoryCafeteria,
			Content:      "식당 혼잡",
			CreatedAt:    now.Add(-3 * time.Minute),
		})
	}

	breakdown := []models.SummaryEntry{
		{Category: models.CategoryTraffic, Summary: "셔틀 정류장 대기열이 깁니다", Confidence: 80, ReportCount: 3},
		{Category: models.CategoryCafeteria, Summary: "학생회관 식당이 혼잡합니다", Confidence: 70, ReportCount: 2},
	}
	response, _ := json.Marshal(breakdown)
	client := &fakeLLM{response: "```json\n" + string(response) + "\n```"}
	sink := &fakeSummarySink{}

	e := newTestEngine(src, sink, client, now)

	if err := e.ProcessSummary(context.Background(), 1); err != nil {
		t.Fatalf("ProcessSummary() error = %v", err)
	}

	if client.calls != 1 {
		t.Fatalf("Expected exactly 1 LLM call, got %d", client.calls)
	}
	if !strings.Contains(client.lastPrompt, "[TRAFFIC] 셔틀 대기열 김") {
		t.Error("Expected prompt to contain the rendered TRAFFIC reports")
	}
	if !strings.Contains(client.lastPrompt, "[CAFETERIA] 식당 혼잡") {
		t.Error("Expected prompt to contain the rendered CAFETERIA reports")
	}

	if len(sink.saved) != 1 {
		t.Fatalf("Expected exactly 1 summary written, got %d", len(sink.saved))
	}
	saved := sink.saved[0]
	if saved.UniversityID != 1 {
		t.Errorf("Expected universityID 1, got %d", saved.UniversityID)
	}
	if !saved.ValidUntil.Equal(now.Add(10 * time.Minute)) {
		t.Errorf("Expected validUntil %v, got %v", now.Add(10*time.Minute), saved.ValidUntil)
	}

	// breakdown 必须逐字段往返一致
	var got []models.SummaryEntry
	if err := json.Unmarshal(saved.Breakdown, &got); err != nil {
		t.Fatalf("Failed to unmarshal persisted breakdown: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 breakdown entries, got %d", len(got))
	}
	for i := range breakdown {
		if got[i] != breakdown[i] {
			t.Errorf("Breakdown entry %d = %+v, want %+v", i, got[i], breakdown[i])
		}
	}
}

func TestProcessSummary_WindowBoundaryIsStrict(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	boundary := now.Add(-10 * time.Minute)

	src := &fakeReportSource{reports: []models.CampusReport{
		// 恰好落在窗口边界上：排除
		{UniversityID: 1, Category: models.CategoryEtc, Content: "boundary", CreatedAt: boundary},
		// 边界后 1ms：包含
		{UniversityID: 1, Category: models.CategoryEtc, Content: "inside", CreatedAt: boundary.Add(time.Millisecond)},
	}}
	client := &fakeLLM{response: `[{"category":"ETC","summary":"ok","confidence":50,"reportCount":1}]`}
	sink := &fakeSummarySink{}

	e := newTestEngine(src, sink, client, now)

	if err := e.ProcessSummary(context.Background(), 1); err != nil {
		t.Fatalf("ProcessSummary() error = %v", err)
	}

	if !src.lastSince.Equal(boundary) {
		t.Errorf("Expected window start %v, got %v", boundary, src.lastSince)
	}
	if strings.Contains(client.lastPrompt, "boundary") {
		t.Error("Report created exactly at the window boundary must be excluded")
	}
	if !strings.Contains(client.lastPrompt, "inside") {
		t.Error("Report created 1ms inside the window must be included")
	}
}

func TestProcessSummary_BoundaryOnlyReportIsNoOp(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeReportSource{reports: []models.CampusReport{
		{UniversityID: 1, Category: models.CategoryEtc, Content: "boundary", CreatedAt: now.Add(-10 * time.Minute)},
	}}
	client := &fakeLLM{}
	sink := &fakeSummarySink{}

	e := newTestEngine(src, sink, client, now)

	if err := e.ProcessSummary(context.Background(), 1); err != nil {
		t.Fatalf("ProcessSummary() error = %v", err)
	}
	if client.calls != 0 || len(sink.saved) != 0 {
		t.Error("A report exactly at the boundary must not trigger a summary")
	}
}

func TestProcessSummary_MalformedResponseWritesNothing(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeReportSource{reports: []models.CampusReport{
		{UniversityID: 1, Category: models.CategoryEtc, Content: "report", CreatedAt: now.Add(-time.Minute)},
	}}
	client := &fakeLLM{response: "this is not json"}
	sink := &fakeSummarySink{}

	e := newTestEngine(src, sink, client, now)

	if err := e.ProcessSummary(context.Background(), 1); err == nil {
		t.Fatal("Expected error for malformed LLM response")
	}
	if len(sink.saved) != 0 {
		t.Error("Expected no summary written on parse failure")
	}
}

func TestProcessSummary_NullResponseWritesNothing(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeReportSource{reports: []models.CampusReport{
		{UniversityID: 1, Category: models.CategoryEtc, Content: "report", CreatedAt: now.Add(-time.Minute)},
	}}
	client := &fakeLLM{response: "```json\nnull\n```"}
	sink := &fakeSummarySink{}

	e := newTestEngine(src, sink, client, now)

	if err := e.ProcessSummary(context.Background(), 1); err == nil {
		t.Fatal("Expected error for a literal null response")
	}
	if len(sink.saved) != 0 {
		t.Error("Expected no summary written for a null breakdown")
	}
}

func TestProcessSummary_GenerationErrorWritesNothing(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeReportSource{reports: []models.CampusReport{
		{UniversityID: 1, Category: models.CategoryEtc, Content: "report", CreatedAt: now.Add(-time.Minute)},
	}}
	client := &fakeLLM{err: errors.New("upstream timeout")}
	sink := &fakeSummarySink{}

	e := newTestEngine(src, sink, client, now)

	if err := e.ProcessSummary(context.Background(), 1); err == nil {
		t.Fatal("Expected error when the generation call fails")
	}
	if len(sink.saved) != 0 {
		t.Error("Expected no summary written on generation failure")
	}
}

func TestProcessSummary_Idempotent(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	src := &fakeReportSource{reports: []models.CampusReport{
		{UniversityID: 1, Category: models.CategoryEtc, Content: "report", CreatedAt: now.Add(-time.Minute)},
	}}
	client := &fakeLLM{response: `[{"category":"ETC","summary":"ok","confidence":50,"reportCount":1}]`}
	sink := &fakeSummarySink{}

	e := newTestEngine(src, sink, client, now)

	// 连续两次运行消费同一窗口，允许产生两条近似摘要，但不得重复消费之外的数据
	if err := e.ProcessSummary(context.Background(), 1); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if err := e.ProcessSummary(context.Background(), 1); err != nil {
		t.Fatalf("second run error = %v", err)
	}

	if len(sink.saved) != 2 {
		t.Fatalf("Expected 2 summary rows, got %d", len(sink.saved))
	}
	if string(sink.saved[0].Breakdown) != string(sink.saved[1].Breakdown) {
		t.Error("Expected both runs over the same window to persist the same breakdown")
	}
}
