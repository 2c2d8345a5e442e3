package main

import "github.com/promptstudiohq/prompt-studio/internal/llm"

var (
	providerFor      = llm.ProviderFor
	mergeProviderFor = llm.MergeProviderFor
)
