package models

import "time"

// AnalysisRun is one persisted analysis: the full summary under a stable
// identifier, so past runs can be listed and the latest re-rendered without
// re-parsing source files.
type AnalysisRun struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Summary   *TradingSummary `json:"summary"`
}
