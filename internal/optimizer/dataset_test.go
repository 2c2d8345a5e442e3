package optimizer

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadExamples_CSV(t *testing.T) {
	data := []byte(`answer,question,source
4,"What is 2+2?",math
Paris,"Capital of France?",geo
skip,"",none
orphan
`)

	got, err := LoadExamples("train.csv", data)
	if err != nil {
		t.Fatalf("LoadExamples: %v", err)
	}

	want := []Example{
		{Question: "What is 2+2?", Answer: "4"},
		{Question: "Capital of France?", Answer: "Paris"},
	}
	if len(got) != len(want) {
		t.Fatalf("examples: got %d, want %d (%+v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("example %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadExamples_CSVMissingColumns(t *testing.T) {
	data := []byte("q,a\n1,2\n")

	_, err := LoadExamples("train.csv", data)
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	if !strings.Contains(err.Error(), "question and answer") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadExamples_CSVEmptyFile(t *testing.T) {
	if _, err := LoadExamples("train.csv", nil); err == nil {
		t.Fatal("expected error for empty csv")
	}
}

func TestLoadExamples_JSONL(t *testing.T) {
	data := []byte(`{"question":" What is 2+2? ","answer":" 4 "}

{"question":"Capital of France?","answer":"Paris"}
{"question":"","answer":"ignored"}
`)

	got, err := LoadExamples("train.jsonl", data)
	if err != nil {
		t.Fatalf("LoadExamples: %v", err)
	}

	want := []Example{
		{Question: "What is 2+2?", Answer: "4"},
		{Question: "Capital of France?", Answer: "Paris"},
	}
	if len(got) != len(want) {
		t.Fatalf("examples: got %d, want %d (%+v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("example %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadExamples_JSONLMalformed(t *testing.T) {
	_, err := LoadExamples("train.jsonl", []byte("{not json}\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parse jsonl") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadExamples_UnsupportedExtension(t *testing.T) {
	tests := []string{"train.txt", "train", "train.json", "train.csv.gz"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadExamples(name, []byte("irrelevant"))
			if !errors.Is(err, ErrUnsupportedDataset) {
				t.Fatalf("got %v, want ErrUnsupportedDataset", err)
			}
		})
	}
}

func TestLoadExamples_ExtensionCaseInsensitive(t *testing.T) {
	got, err := LoadExamples("TRAIN.CSV", []byte("question,answer\nhi,there\n"))
	if err != nil {
		t.Fatalf("LoadExamples: %v", err)
	}
	if len(got) != 1 || got[0].Question != "hi" {
		t.Errorf("got %+v", got)
	}
}
