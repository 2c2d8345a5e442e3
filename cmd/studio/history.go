package main

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptstudiohq/prompt-studio/internal/config"
	"github.com/promptstudiohq/prompt-studio/internal/store"
)

func newHistoryCmd(st *cliState) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show analysis history",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			st.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, st, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max analyses to list")

	cmd.AddCommand(newHistoryShowCmd(st))
	return cmd
}

func newHistoryShowCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "show <analysis-id>",
		Short: "Show details for an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, st, args[0])
		},
	}
}

func runHistoryList(cmd *cobra.Command, st *cliState, limit int) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("history: missing config (internal error)")
	}

	stor, err := store.Open(st.cfg)
	if err != nil {
		return err
	}
	defer stor.Close()

	var reader store.AnalysisReader = stor

	analyses, err := reader.ListAnalyses(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(analyses) == 0 {
		_, _ = fmt.Fprintln(out, "No analyses found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ANALYSIS_ID\tCREATED\tPATTERNS\tTOP_PATTERN\tCONFIDENCE\tREFINED")
	for _, a := range analyses {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%.2f\t%s\n",
			a.ID,
			formatTime(a.CreatedAt),
			a.PatternCount,
			topPatternLabel(a.TopPattern),
			a.TopConfidence,
			refinedLabel(a.Refined),
		)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, st *cliState, analysisID string) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("history: missing config (internal error)")
	}

	analysisID = strings.TrimSpace(analysisID)
	if analysisID == "" {
		return fmt.Errorf("history: missing analysis id")
	}

	stor, err := store.Open(st.cfg)
	if err != nil {
		return err
	}
	defer stor.Close()

	var reader store.AnalysisReader = stor

	rec, err := reader.GetAnalysis(cmd.Context(), analysisID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("history: analysis %q not found", analysisID)
		}
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Analysis: %s\n", rec.ID)
	_, _ = fmt.Fprintf(out, "Created: %s\n", formatTime(rec.CreatedAt))
	_, _ = fmt.Fprintf(out, "Refined: %s\n", refinedLabel(rec.Refined))
	_, _ = fmt.Fprintf(out, "Patterns: %d\n", rec.PatternCount)
	_, _ = fmt.Fprintf(out, "Prompt: %s\n", rec.Prompt)

	if len(rec.Patterns) == 0 {
		return nil
	}

	type namedDetail struct {
		name   string
		detail store.PatternDetail
	}
	details := make([]namedDetail, 0, len(rec.Patterns))
	for name, d := range rec.Patterns {
		details = append(details, namedDetail{name: name, detail: d})
	}
	sort.Slice(details, func(i, j int) bool {
		if details[i].detail.Confidence != details[j].detail.Confidence {
			return details[i].detail.Confidence > details[j].detail.Confidence
		}
		return details[i].name < details[j].name
	})

	_, _ = fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tCONFIDENCE\tCATEGORY\tDESCRIPTION")
	for _, d := range details {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\n", d.name, d.detail.Confidence, d.detail.Category, d.detail.Description)
	}
	return tw.Flush()
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format(time.RFC3339)
}

func topPatternLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return "-"
	}
	return name
}

func refinedLabel(refined bool) string {
	if refined {
		return "yes"
	}
	return "no"
}
