package api

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promptstudiohq/prompt-studio/internal/llm"
	"github.com/promptstudiohq/prompt-studio/internal/optimizer"
	"github.com/promptstudiohq/prompt-studio/internal/pattern"
	"github.com/promptstudiohq/prompt-studio/internal/store"
	"github.com/promptstudiohq/prompt-studio/internal/template"
)

// Package vars so tests can substitute fake providers.
var (
	providerFor      = llm.ProviderFor
	mergeProviderFor = llm.MergeProviderFor
)

type analyzeRequest struct {
	Prompt        string `json:"prompt"`
	Format        string `json:"format"`
	UseLLMRefiner bool   `json:"use_llm_refiner"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	APIKey        string `json:"api_key"`
}

type refineRequest struct {
	Prompt   string         `json:"prompt"`
	Patterns pattern.Result `json:"patterns"`
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	APIKey   string         `json:"api_key"`
}

type suggestRequest struct {
	Patterns pattern.Result `json:"patterns"`
}

type mergeRequest struct {
	UserPrompt   string `json:"user_prompt"`
	TemplateSlug string `json:"template_slug"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	APIKey       string `json:"api_key"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	promptText := strings.TrimSpace(req.Prompt)
	if promptText == "" {
		respondError(c, http.StatusBadRequest, errors.New("Prompt cannot be empty."))
		return
	}

	result := pattern.Detect(promptText)

	refined := false
	if req.UseLLMRefiner {
		provider, err := providerFor(s.config, llm.CallConfig{
			Provider: req.Provider,
			Model:    req.Model,
			APIKey:   req.APIKey,
		})
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := s.callContext(c)
		defer cancel()

		refiner := &pattern.Refiner{Provider: provider}
		result, refined = refiner.Refine(ctx, promptText, result)
	}

	s.saveAnalysis(c.Request.Context(), promptText, result, refined)

	resp := gin.H{"patterns": result}
	if format := strings.TrimSpace(req.Format); format != "" {
		resp["report"] = pattern.Summarize(promptText, result, format)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRefine(c *gin.Context) {
	var req refineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	promptText := strings.TrimSpace(req.Prompt)
	if promptText == "" {
		respondError(c, http.StatusBadRequest, errors.New("prompt is required"))
		return
	}
	if len(req.Patterns) == 0 {
		respondError(c, http.StatusBadRequest, errors.New("patterns are required"))
		return
	}

	provider, err := providerFor(s.config, llm.CallConfig{
		Provider: req.Provider,
		Model:    req.Model,
		APIKey:   req.APIKey,
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := s.callContext(c)
	defer cancel()

	refiner := &pattern.Refiner{Provider: provider}
	refined, _ := refiner.Refine(ctx, promptText, req.Patterns)

	c.JSON(http.StatusOK, gin.H{"patterns": refined})
}

func (s *Server) handleSuggestTemplates(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	suggestions := template.Suggest(req.Patterns)
	if suggestions == nil {
		suggestions = []template.Suggestion{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (s *Server) handleGetTemplate(c *gin.Context) {
	// Catch-all params keep their leading slash.
	slug := strings.TrimSpace(strings.TrimPrefix(c.Param("slug"), "/"))
	if slug == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing template slug"))
		return
	}
	c.JSON(http.StatusOK, template.Resolve(slug))
}

func (s *Server) handleMergeTemplate(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	userPrompt := strings.TrimSpace(req.UserPrompt)
	if userPrompt == "" {
		respondError(c, http.StatusBadRequest, errors.New("user_prompt is required"))
		return
	}
	slug := strings.TrimSpace(req.TemplateSlug)
	if slug == "" {
		respondError(c, http.StatusBadRequest, errors.New("template_slug is required"))
		return
	}

	provider, err := mergeProviderFor(s.config, llm.CallConfig{
		Provider: req.Provider,
		Model:    req.Model,
		APIKey:   req.APIKey,
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := s.callContext(c)
	defer cancel()

	merger := &template.Merger{Provider: provider}
	c.JSON(http.StatusOK, merger.Merge(ctx, userPrompt, slug))
}

func (s *Server) handleOptimize(c *gin.Context) {
	promptText := strings.TrimSpace(c.PostForm("prompt"))
	if promptText == "" {
		respondError(c, http.StatusBadRequest, errors.New("prompt is required"))
		return
	}

	file, err := c.FormFile("dataset")
	if err != nil {
		respondError(c, http.StatusBadRequest, errors.New("dataset file is required"))
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("open dataset: %w", err))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("read dataset: %w", err))
		return
	}

	examples, err := optimizer.LoadExamples(file.Filename, data)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	provider, err := providerFor(s.config, llm.CallConfig{
		Provider: c.PostForm("provider"),
		Model:    c.PostForm("model"),
		APIKey:   c.PostForm("api_key"),
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Minute)
	defer cancel()

	opt := &optimizer.Optimizer{Provider: provider}
	result, err := opt.Optimize(ctx, promptText, examples)
	if err != nil {
		respondError(c, http.StatusBadGateway, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"original_prompt":  promptText,
		"optimized_prompt": result.OptimizedPrompt,
	})
}

func (s *Server) handleListAnalyses(c *gin.Context) {
	if s == nil || s.store == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	limit, err := parseLimitParam(c.Query("limit"), 20)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	records, err := s.store.ListAnalyses(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	if s == nil || s.store == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing analysis id"))
		return
	}

	rec, err := s.store.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, fmt.Errorf("analysis %q not found", id))
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// saveAnalysis persists one analysis for the history endpoints. Failures are
// logged and never fail the request.
func (s *Server) saveAnalysis(ctx context.Context, promptText string, result pattern.Result, refined bool) {
	if s == nil || s.store == nil {
		return
	}

	id, err := newAnalysisID()
	if err != nil {
		log.Printf("api: analysis id: %v", err)
		return
	}

	if err := s.store.SaveAnalysis(ctx, analysisRecordFrom(id, promptText, result, refined)); err != nil {
		log.Printf("api: save analysis %s: %v", id, err)
	}
}

func analysisRecordFrom(id, promptText string, result pattern.Result, refined bool) *store.AnalysisRecord {
	rec := &store.AnalysisRecord{
		ID:           id,
		Prompt:       promptText,
		PatternCount: len(result),
		Refined:      refined,
	}
	if len(result) == 0 {
		return rec
	}

	rec.Patterns = make(map[string]store.PatternDetail, len(result))
	for name, m := range result {
		rec.Patterns[name] = store.PatternDetail{
			Confidence:  m.Confidence,
			Description: m.Description,
			Category:    m.Category,
			Evidence:    m.Evidence,
		}
		if m.Confidence > rec.TopConfidence ||
			(m.Confidence == rec.TopConfidence && name < rec.TopPattern) {
			rec.TopPattern = name
			rec.TopConfidence = m.Confidence
		}
	}
	return rec
}

func (s *Server) callContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := 60 * time.Second
	if s != nil && s.config != nil && s.config.LLM.RequestTimeout > 0 {
		timeout = s.config.LLM.RequestTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseLimitParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	if v <= 0 {
		return 0, fmt.Errorf("limit must be > 0")
	}
	return v, nil
}

func newAnalysisID() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("analysis_%s_%x", time.Now().UTC().Format("20060102T150405Z"), buf), nil
}
