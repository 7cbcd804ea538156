package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dealflowhq/dealflow/internal/record"
)

// Extractor turns a raw transcript into a processing record by running
// three generation calls: basic summary (mandatory), company facts
// (optional), participant facts (optional).
type Extractor struct {
	completer Completer
	funds     map[string]record.FundCriteria
	logger    *zap.Logger
}

// NewExtractor creates an extractor. funds may be nil.
func NewExtractor(completer Completer, funds map[string]record.FundCriteria, logger *zap.Logger) (*Extractor, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Extractor{
		completer: completer,
		funds:     funds,
		logger:    logger.Named("extraction"),
	}, nil
}

// Extract runs the extraction pipeline. A failure of the basic step returns
// a record.ExtractionError and no record; enrichment failures are logged
// and leave the corresponding field empty.
func (e *Extractor) Extract(ctx context.Context, transcript string) (*record.Record, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, record.NewExtractionError("input", errors.New("no transcript content provided"))
	}

	rec := record.New(transcript)
	rec.State = record.StateExtracting

	basic, err := e.extractBasic(ctx, transcript)
	if err != nil {
		rec.State = record.StateExtractionFailed
		return nil, record.NewExtractionError("basic", err)
	}
	rec.Summary = basic.Summary
	rec.KeyPoints = basic.KeyPoints
	rec.NextSteps = basic.NextSteps

	if company, err := e.extractCompany(ctx, transcript); err != nil {
		e.logger.Warn("company extraction failed, continuing without company info",
			zap.String("record_id", rec.ID), zap.Error(err))
	} else if company != nil {
		rec.Company = company
	}

	if participants, err := e.extractParticipants(ctx, transcript); err != nil {
		e.logger.Warn("participant extraction failed, continuing without participants",
			zap.String("record_id", rec.ID), zap.Error(err))
	} else {
		rec.Participants = participants
	}

	return rec, nil
}

// extractBasic is the only mandatory step. Blank summary or an empty
// key-point list is a hard failure, not a degraded result.
func (e *Extractor) extractBasic(ctx context.Context, transcript string) (*basicResult, error) {
	raw, err := e.completer.Complete(ctx, basicPrompt,
		"Analyze this transcript and provide ONLY a JSON response:\n\n"+transcript)
	if err != nil {
		return nil, fmt.Errorf("generation call failed: %w", err)
	}

	jsonStr, err := LooseJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("response contained no JSON: %w", err)
	}

	var result basicResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON shape: %w", err)
	}
	if strings.TrimSpace(result.Summary) == "" {
		return nil, errors.New("summary is empty")
	}
	if len(result.KeyPoints) == 0 {
		return nil, errors.New("key_points is empty")
	}
	return &result, nil
}

// extractCompany returns (nil, nil) when the response carries no company
// name; that is "no company info", not an error.
func (e *Extractor) extractCompany(ctx context.Context, transcript string) (*record.Company, error) {
	raw, err := e.completer.Complete(ctx, companyPrompt+criteriaContext(e.funds),
		"Extract company information as JSON ONLY:\n\n"+transcript)
	if err != nil {
		return nil, fmt.Errorf("generation call failed: %w", err)
	}

	jsonStr, err := LooseJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("response contained no JSON: %w", err)
	}

	var result companyResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON shape: %w", err)
	}
	if strings.TrimSpace(result.Name) == "" {
		return nil, nil
	}

	company := &record.Company{
		Name:       result.Name,
		Revenue:    result.Revenue,
		GrowthRate: result.GrowthRate,
		Location:   result.Location,
	}
	// Out-of-vocabulary enum values are dropped, not propagated.
	if industry, ok := record.ParseIndustry(result.Industry); ok {
		company.Industry = industry
	}
	if stage, ok := record.ParseStage(result.Stage); ok {
		company.Stage = stage
	}
	return company, nil
}

// extractParticipants drops entries without a name individually; an
// unparsable list as a whole means "no participants".
func (e *Extractor) extractParticipants(ctx context.Context, transcript string) ([]record.Participant, error) {
	raw, err := e.completer.Complete(ctx, participantsPrompt,
		"Extract participant information as JSON ONLY:\n\n"+transcript)
	if err != nil {
		return nil, fmt.Errorf("generation call failed: %w", err)
	}

	jsonStr, err := LooseJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("response contained no JSON: %w", err)
	}

	var result participantsResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON shape: %w", err)
	}

	participants := make([]record.Participant, 0, len(result.Participants))
	for _, p := range result.Participants {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		participants = append(participants, record.Participant{
			Name:      p.Name,
			Role:      p.Role,
			Company:   p.Company,
			KeyPoints: p.KeyPoints,
		})
	}
	return participants, nil
}
