package store

import (
	"context"
	"time"
)

// AnalysisWriter defines persistence for analysis records.
type AnalysisWriter interface {
	SaveAnalysis(ctx context.Context, rec *AnalysisRecord) error
}

// AnalysisReader defines read access to analysis history.
type AnalysisReader interface {
	GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error)
	ListAnalyses(ctx context.Context, limit int) ([]*AnalysisRecord, error)
}

// Store defines persistence for analysis history.
type Store interface {
	AnalysisWriter
	AnalysisReader
	Close() error
}

// AnalysisRecord stores one prompt analysis.
type AnalysisRecord struct {
	ID            string
	CreatedAt     time.Time
	Prompt        string
	PatternCount  int
	TopPattern    string
	TopConfidence float64
	Refined       bool
	Patterns      map[string]PatternDetail // JSON serialized
}

// PatternDetail stores one detected pattern inside an analysis record.
type PatternDetail struct {
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Evidence    []string `json:"evidence,omitempty"`
}
