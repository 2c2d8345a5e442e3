package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/promptstudiohq/prompt-studio/internal/config"
	"github.com/promptstudiohq/prompt-studio/internal/llm"
	"github.com/promptstudiohq/prompt-studio/internal/template"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the built-in template catalog",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesShowCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tVARIABLES")
			for _, slug := range template.Slugs() {
				resolved := template.Resolve(slug)
				fmt.Fprintf(tw, "%s\t%d\n", resolved.Slug, resolved.VariableCount)
			}
			return tw.Flush()
		},
	}
}

func newTemplatesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show a template body and its variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplatesShow(cmd, args[0])
		},
	}
}

func runTemplatesShow(cmd *cobra.Command, slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return fmt.Errorf("templates: missing slug")
	}

	resolved := template.Resolve(slug)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Slug: %s\n", resolved.Slug)
	_, _ = fmt.Fprintf(out, "Variables (%d): %s\n", resolved.VariableCount, strings.Join(resolved.Variables, ", "))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, resolved.Content)
	return nil
}

type mergeOptions struct {
	promptFile string
	slug       string
	provider   string
	model      string
	apiKey     string
}

func newMergeCmd(st *cliState) *cobra.Command {
	var opts mergeOptions

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a prompt into a template",
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
			return runMerge(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.promptFile, "prompt", "p", "", "path to prompt file")
	cmd.Flags().StringVar(&opts.slug, "template", "", "template slug to merge into")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider (openrouter, groq, claude, ollama)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model override")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "API key override")

	return cmd
}

func runMerge(cmd *cobra.Command, st *cliState, opts *mergeOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("merge: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("merge: nil options")
	}

	slug := strings.TrimSpace(opts.slug)
	if slug == "" {
		return fmt.Errorf("merge: --template is required")
	}

	promptText, err := readPrompt(opts.promptFile)
	if err != nil {
		return err
	}

	provider, err := mergeProviderFor(st.cfg, llm.CallConfig{
		Provider: opts.provider,
		Model:    opts.model,
		APIKey:   opts.apiKey,
	})
	if err != nil {
		return err
	}

	ctx, cancel := callContext(cmd.Context(), st.cfg)
	defer cancel()

	merger := &template.Merger{Provider: provider}
	res := merger.Merge(ctx, promptText, slug)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Source: %s\n\n", res.Source)
	_, _ = fmt.Fprintln(out, res.Output)
	return nil
}
