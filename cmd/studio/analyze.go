package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptstudiohq/prompt-studio/internal/config"
	"github.com/promptstudiohq/prompt-studio/internal/llm"
	"github.com/promptstudiohq/prompt-studio/internal/pattern"
	"github.com/promptstudiohq/prompt-studio/internal/store"
	"github.com/promptstudiohq/prompt-studio/internal/template"
)

type analyzeOptions struct {
	promptFile string
	format     string
	refine     bool
	provider   string
	model      string
	apiKey     string
}

func newAnalyzeCmd(st *cliState) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Detect prompt patterns and print a report",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			st.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.promptFile, "prompt", "p", "", "path to prompt file")
	cmd.Flags().StringVar(&opts.format, "format", pattern.FormatText, "report format (text, json, markdown)")
	cmd.Flags().BoolVar(&opts.refine, "refine", false, "refine rule-based detection with an LLM")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider (openrouter, groq, claude, ollama)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model override")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "API key override")

	return cmd
}

func runAnalyze(cmd *cobra.Command, st *cliState, opts *analyzeOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("analyze: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("analyze: nil options")
	}

	format := strings.ToLower(strings.TrimSpace(opts.format))
	switch format {
	case "":
		format = pattern.FormatText
	case pattern.FormatText, pattern.FormatJSON, pattern.FormatMarkdown:
	default:
		return fmt.Errorf("analyze: invalid --format %q (expected text, json or markdown)", opts.format)
	}

	promptText, err := readPrompt(opts.promptFile)
	if err != nil {
		return err
	}

	result := pattern.Detect(promptText)

	refined := false
	if opts.refine {
		provider, err := providerFor(st.cfg, llm.CallConfig{
			Provider: opts.provider,
			Model:    opts.model,
			APIKey:   opts.apiKey,
		})
		if err != nil {
			return err
		}

		ctx, cancel := callContext(cmd.Context(), st.cfg)
		refiner := &pattern.Refiner{Provider: provider}
		refinedResult, ok := refiner.Refine(ctx, promptText, result)
		cancel()
		if ok {
			result = refinedResult
			refined = true
		} else {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "refinement unavailable; showing rule-based result")
		}
	}

	report := pattern.Summarize(promptText, result, format)
	if !strings.HasSuffix(report, "\n") {
		report += "\n"
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), report)

	return saveAnalysisToStore(cmd.Context(), st, promptText, result, refined)
}

func newSuggestCmd() *cobra.Command {
	var promptFile string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest templates matching a prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, promptFile)
		},
	}

	cmd.Flags().StringVarP(&promptFile, "prompt", "p", "", "path to prompt file")
	return cmd
}

func runSuggest(cmd *cobra.Command, promptFile string) error {
	promptText, err := readPrompt(promptFile)
	if err != nil {
		return err
	}

	suggestions := template.Suggest(pattern.Detect(promptText))

	out := cmd.OutOrStdout()
	if len(suggestions) == 0 {
		_, _ = fmt.Fprintln(out, "No template suggestions for this prompt.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TEMPLATE\tSCORE")
	for _, s := range suggestions {
		fmt.Fprintf(tw, "%s\t%.2f\n", s.Name, s.Score)
	}
	return tw.Flush()
}

func saveAnalysisToStore(ctx context.Context, st *cliState, promptText string, result pattern.Result, refined bool) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("analyze: missing config (internal error)")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stor, err := store.Open(st.cfg)
	if err != nil {
		return fmt.Errorf("analyze: open store: %w", err)
	}
	defer stor.Close()

	var writer store.AnalysisWriter = stor

	id, err := newAnalysisID()
	if err != nil {
		return fmt.Errorf("analyze: generate analysis id: %w", err)
	}

	rec := analysisRecordFrom(id, promptText, result, refined)
	if err := writer.SaveAnalysis(ctx, rec); err != nil {
		return fmt.Errorf("analyze: save analysis: %w", err)
	}
	return nil
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

func newAnalysisID() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("analysis_%s_%x", time.Now().UTC().Format("20060102T150405Z"), buf), nil
}
