package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/promptstudiohq/prompt-studio/internal/config"
)

type cliState struct {
	configPath string
	cfg        *config.Config
}

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{configPath: config.DefaultPath}

	root := &cobra.Command{
		Use:           "studio",
		Short:         "Analyze prompts and recommend templates",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", st.configPath, "path to config file")

	root.AddCommand(newAnalyzeCmd(st))
	root.AddCommand(newSuggestCmd())
	root.AddCommand(newTemplatesCmd())
	root.AddCommand(newMergeCmd(st))
	root.AddCommand(newOptimizeCmd(st))
	root.AddCommand(newHistoryCmd(st))
	return root
}

// callContext bounds one LLM call with the configured request timeout.
func callContext(parent context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	timeout := 60 * time.Second
	if cfg != nil && cfg.LLM.RequestTimeout > 0 {
		timeout = cfg.LLM.RequestTimeout
	}
	return context.WithTimeout(parent, timeout)
}
