package api

import (
	"context"

	"github.com/promptstudiohq/prompt-studio/internal/llm"
	"github.com/promptstudiohq/prompt-studio/internal/store"
)

type fakeStore struct {
	SaveAnalysisFunc func(ctx context.Context, rec *store.AnalysisRecord) error
	GetAnalysisFunc  func(ctx context.Context, id string) (*store.AnalysisRecord, error)
	ListAnalysesFunc func(ctx context.Context, limit int) ([]*store.AnalysisRecord, error)
	CloseFunc        func() error
}

func (s *fakeStore) SaveAnalysis(ctx context.Context, rec *store.AnalysisRecord) error {
	if s.SaveAnalysisFunc != nil {
		return s.SaveAnalysisFunc(ctx, rec)
	}
	return nil
}

func (s *fakeStore) GetAnalysis(ctx context.Context, id string) (*store.AnalysisRecord, error) {
	if s.GetAnalysisFunc != nil {
		return s.GetAnalysisFunc(ctx, id)
	}
	return nil, nil
}

func (s *fakeStore) ListAnalyses(ctx context.Context, limit int) ([]*store.AnalysisRecord, error) {
	if s.ListAnalysesFunc != nil {
		return s.ListAnalysesFunc(ctx, limit)
	}
	return nil, nil
}

func (s *fakeStore) Close() error {
	if s.CloseFunc != nil {
		return s.CloseFunc()
	}
	return nil
}

type fakeProvider struct {
	CompleteFunc func(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if p.CompleteFunc != nil {
		return p.CompleteFunc(ctx, req)
	}
	return textResponse(""), nil
}

func textResponse(text string) *llm.Response {
	return &llm.Response{
		Content:    []llm.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
	}
}
