package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptstudiohq/prompt-studio/internal/config"
	"github.com/promptstudiohq/prompt-studio/internal/llm"
	"github.com/promptstudiohq/prompt-studio/internal/optimizer"
)

func newOptimizeCmd(st *cliState) *cobra.Command {
	var (
		promptFile   string
		datasetFile  string
		outputFile   string
		maxDemos     int
		providerName string
		model        string
		apiKey       string
		showProgress bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Optimize a prompt with demonstrations from a dataset",
		Long: `Bootstrap few-shot demonstrations from a labeled dataset and append the ones the model answers correctly to the prompt.

Examples:
  studio optimize --prompt prompt.txt --dataset train.csv
  studio optimize --prompt prompt.txt --dataset train.jsonl --output optimized.txt
  cat prompt.txt | studio optimize --dataset train.csv
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			promptContent, err := readPrompt(promptFile)
			if err != nil {
				return err
			}

			datasetPath := strings.TrimSpace(datasetFile)
			if datasetPath == "" {
				return errors.New("optimize: --dataset is required")
			}
			data, err := os.ReadFile(datasetPath)
			if err != nil {
				return fmt.Errorf("failed to read dataset file: %w", err)
			}
			examples, err := optimizer.LoadExamples(filepath.Base(datasetPath), data)
			if err != nil {
				return err
			}

			provider, err := providerFor(cfg, llm.CallConfig{
				Provider: providerName,
				Model:    model,
				APIKey:   apiKey,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showProgress {
				fmt.Fprintf(out, "🔍 Loaded %d examples from %s\n", len(examples), filepath.Base(datasetPath))
				fmt.Fprintln(out, "🚀 Bootstrapping demonstrations...")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			opt := &optimizer.Optimizer{Provider: provider, MaxDemos: maxDemos}
			result, err := opt.Optimize(ctx, promptContent, examples)
			if err != nil {
				return fmt.Errorf("failed to optimize prompt: %w", err)
			}

			if showProgress {
				fmt.Fprintf(out, "📈 Kept %d of %d attempted demonstrations\n", len(result.Demos), result.Attempted)
			}

			if outputFile != "" {
				if err := os.WriteFile(outputFile, []byte(result.OptimizedPrompt), 0644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				if showProgress {
					fmt.Fprintf(out, "✅ Optimized prompt saved to: %s\n", outputFile)
				}
				return nil
			}

			fmt.Fprintln(out, "\n--- Optimized Prompt ---")
			fmt.Fprintln(out, result.OptimizedPrompt)
			return nil
		},
	}

	cmd.Flags().StringVarP(&promptFile, "prompt", "p", "", "path to prompt file")
	cmd.Flags().StringVar(&datasetFile, "dataset", "", "path to dataset file (.csv or .jsonl)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file for optimized prompt")
	cmd.Flags().IntVar(&maxDemos, "demos", 4, "max demonstrations to keep")
	cmd.Flags().StringVar(&providerName, "provider", "", "LLM provider (openrouter, groq, claude, ollama)")
	cmd.Flags().StringVar(&model, "model", "", "model override")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key override")
	cmd.Flags().BoolVar(&showProgress, "progress", true, "show progress messages")

	return cmd
}
