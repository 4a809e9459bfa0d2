package mcp

import (
	"context"

	"github.com/custodia-labs/regula/internal/core/domain"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer      *domain.Answer
	err         error
	regulations []domain.Regulation
	question    string
}

func (m *mockAskService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

func (m *mockAskService) Regulations() []domain.Regulation {
	return m.regulations
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	report *domain.IndexReport
	err    error
}

func (m *mockIndexService) Build(_ context.Context, _ bool) (*domain.IndexReport, error) {
	return m.report, m.err
}

func (m *mockIndexService) LastRun(_ context.Context) (*domain.IndexReport, error) {
	return m.report, m.err
}

func testRegulations() []domain.Regulation {
	return []domain.Regulation{
		{Name: "GB50016_2014_建筑设计防火规范", Path: "data/jzsj.txt", Abbr: "jzsj"},
		{Name: "GB50025_2022_宿舍、旅馆建筑项目规范", Path: "data/sslg.txt", Abbr: "sslg"},
	}
}
