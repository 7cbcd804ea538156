// Package extraction derives structured facts from raw meeting transcripts
// via a text-generation service. Only the summary/key-points step is
// mandatory; company and participant enrichment are best-effort and never
// fail the record.
package extraction

import (
	"context"
)

// Completer is the text-generation boundary: an ordered system instruction
// and user content in, free text expected to contain one JSON object out.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config holds provider configuration for the default completer.
type Config struct {
	APIKey      string  `json:"api_key,omitempty"`
	Model       string  `json:"model,omitempty"`
	BaseURL     string  `json:"base_url,omitempty"`
	Temperature float64 `json:"temperature"`
}

// basicResult is the mandatory first extraction step.
type basicResult struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	NextSteps []string `json:"next_steps,omitempty"`
}

// companyResult is the optional second step. A missing name means no
// usable company info.
type companyResult struct {
	Name       string   `json:"name"`
	Industry   string   `json:"industry"`
	Stage      string   `json:"stage"`
	Revenue    *float64 `json:"revenue"`
	GrowthRate *float64 `json:"growth_rate"`
	Location   string   `json:"location"`
}

// participantsResult is the optional third step.
type participantsResult struct {
	Participants []participantResult `json:"participants"`
}

type participantResult struct {
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Company   string   `json:"company"`
	KeyPoints []string `json:"key_points"`
}
