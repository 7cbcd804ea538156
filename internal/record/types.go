// Package record defines the domain model for transcript triage: the
// per-transcript processing record, the closed decision/industry/stage
// vocabularies, and the fund criteria passed into extraction prompts.
package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State tracks a record through the processing workflow.
type State string

const (
	StateReceived         State = "received"
	StateExtracting       State = "extracting"
	StateExtractionFailed State = "extraction_failed"
	StateNotified         State = "notified"
	StateDecided          State = "decided"
)

// Outcome is the human-chosen disposition of a transcript. The set is
// closed; decisions outside it are rejected at the parse boundary.
type Outcome string

const (
	OutcomeUrgent        Outcome = "urgent"
	OutcomeFundNotUrgent Outcome = "fund_not_urgent"
	OutcomeFutureFund    Outcome = "future_fund"
	OutcomeNotInterested Outcome = "not_interested"
)

// ParseOutcome maps an action value to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeUrgent, OutcomeFundNotUrgent, OutcomeFutureFund, OutcomeNotInterested:
		return Outcome(s), nil
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

// Label returns the operator-facing button label for the outcome.
func (o Outcome) Label() string {
	switch o {
	case OutcomeUrgent:
		return "Ja Urgent"
	case OutcomeFundNotUrgent:
		return "Ja voor dit fonds maar niet urgent"
	case OutcomeFutureFund:
		return "Ja voor later fonds"
	case OutcomeNotInterested:
		return "Nee niet interessant"
	}
	return string(o)
}

// Industry categorizes the company discussed in a transcript.
type Industry string

const (
	IndustryAI         Industry = "ai"
	IndustrySaaS       Industry = "saas"
	IndustryFintech    Industry = "fintech"
	IndustryHealthcare Industry = "healthcare"
	IndustryBiotech    Industry = "biotech"
	IndustryOther      Industry = "other"
)

// ParseIndustry validates an industry value against the closed set.
func ParseIndustry(s string) (Industry, bool) {
	switch Industry(s) {
	case IndustryAI, IndustrySaaS, IndustryFintech, IndustryHealthcare, IndustryBiotech, IndustryOther:
		return Industry(s), true
	}
	return "", false
}

// Stage is the company's funding stage.
type Stage string

const (
	StageSeed    Stage = "seed"
	StageSeriesA Stage = "series_a"
	StageSeriesB Stage = "series_b"
	StageSeriesC Stage = "series_c"
	StageGrowth  Stage = "growth"
)

// ParseStage validates a stage value against the closed set.
func ParseStage(s string) (Stage, bool) {
	switch Stage(s) {
	case StageSeed, StageSeriesA, StageSeriesB, StageSeriesC, StageGrowth:
		return Stage(s), true
	}
	return "", false
}

// Company holds best-effort facts extracted about the company discussed.
// Name is required; everything else is optional enrichment.
type Company struct {
	Name       string   `json:"name"`
	Industry   Industry `json:"industry,omitempty"`
	Stage      Stage    `json:"stage,omitempty"`
	Revenue    *float64 `json:"revenue,omitempty"`
	GrowthRate *float64 `json:"growth_rate,omitempty"`
	Location   string   `json:"location,omitempty"`
}

// Participant is a person identified in the transcript.
type Participant struct {
	Name      string   `json:"name"`
	Role      string   `json:"role,omitempty"`
	Company   string   `json:"company,omitempty"`
	KeyPoints []string `json:"key_points,omitempty"`
}

// FundCriteria describes a fund's target profile. It is reference context
// for extraction prompts only; nothing enforces it programmatically.
type FundCriteria struct {
	MinRevenue         float64    `koanf:"min_revenue" json:"min_revenue"`
	TargetIndustries   []Industry `koanf:"target_industries" json:"target_industries"`
	Stages             []Stage    `koanf:"stages" json:"stages"`
	CheckSizeMin       float64    `koanf:"check_size_min" json:"check_size_min"`
	CheckSizeMax       float64    `koanf:"check_size_max" json:"check_size_max"`
	RequiredGrowthRate *float64   `koanf:"required_growth_rate" json:"required_growth_rate,omitempty"`
}

// Record is the ephemeral per-transcript processing state. One record is
// created per inbound transcript and lives for the process lifetime.
type Record struct {
	ID         string `json:"id"`
	Transcript string `json:"transcript"`

	Summary      string        `json:"summary"`
	KeyPoints    []string      `json:"key_points"`
	NextSteps    []string      `json:"next_steps,omitempty"`
	Company      *Company      `json:"company,omitempty"`
	Participants []Participant `json:"participants,omitempty"`

	Outcome Outcome `json:"outcome,omitempty"`
	State   State   `json:"state"`

	CreatedAt          time.Time     `json:"created_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// New creates a record for a raw transcript.
func New(transcript string) *Record {
	return &Record{
		ID:         uuid.NewString(),
		Transcript: transcript,
		State:      StateReceived,
		CreatedAt:  time.Now(),
	}
}

// SetOutcome transitions the record to its terminal state. The outcome is
// set at most once; a second call fails with ErrAlreadyDecided.
func (r *Record) SetOutcome(o Outcome) error {
	if r.Outcome != "" {
		return ErrAlreadyDecided
	}
	r.Outcome = o
	r.State = StateDecided
	return nil
}

// CompanyName returns the extracted company name, or a placeholder when
// company enrichment yielded nothing.
func (r *Record) CompanyName() string {
	if r.Company != nil && r.Company.Name != "" {
		return r.Company.Name
	}
	return "Unknown"
}
