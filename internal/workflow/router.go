package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dealflowhq/dealflow/internal/crm"
	"github.com/dealflowhq/dealflow/internal/email"
	"github.com/dealflowhq/dealflow/internal/httpapi"
	"github.com/dealflowhq/dealflow/internal/record"
	"github.com/dealflowhq/dealflow/internal/slack"
)

// CRM is the deal-tracking surface the router needs.
type CRM interface {
	Lookup(ctx context.Context, objectType string) ([]crm.Entry, error)
	CreateInteraction(ctx context.Context, in crm.Interaction) (int64, error)
}

// RouterConfig carries the fan-out destinations and CRM settings.
type RouterConfig struct {
	EmailRecipient  string
	FundXChannel    string
	NoActionChannel string

	CRMEnabled         bool
	CRMInteractionType int64
	CRMAttendeeID      int64
}

// outcomeMeta parameterizes the one decision handler. The four branches
// differ only in this data, never in structure.
type outcomeMeta struct {
	crmSubject string
	broadcast  func(RouterConfig) string
}

// Urgent and fund-not-urgent both announce to the fund channel; the
// follow-up channel already holds the notification itself.
var outcomeTable = map[record.Outcome]outcomeMeta{
	record.OutcomeUrgent: {
		crmSubject: "Urgent Follow-Up",
		broadcast:  func(c RouterConfig) string { return c.FundXChannel },
	},
	record.OutcomeFundNotUrgent: {
		crmSubject: "Fund Follow-Up",
		broadcast:  func(c RouterConfig) string { return c.FundXChannel },
	},
	record.OutcomeFutureFund: {
		crmSubject: "Future Fund Opportunity",
		broadcast:  func(RouterConfig) string { return "" },
	},
	record.OutcomeNotInterested: {
		crmSubject: "Not Interested",
		broadcast:  func(c RouterConfig) string { return c.NoActionChannel },
	},
}

// Router executes the side effects of a human decision. All state it
// needs is re-derived from the pressed message's own blocks, so a
// restart between notification and decision loses nothing.
type Router struct {
	client slack.Client
	sender email.Sender
	store  HandleStore
	crm    CRM
	cfg    RouterConfig
	logger *zap.Logger
}

// NewRouter creates a Router. The CRM client may be nil when CRM
// logging is disabled.
func NewRouter(client slack.Client, sender email.Sender, store HandleStore, crmClient CRM, cfg RouterConfig, logger *zap.Logger) (*Router, error) {
	if client == nil {
		return nil, errors.New("slack client is required")
	}
	if sender == nil {
		return nil, errors.New("email sender is required")
	}
	if store == nil {
		return nil, errors.New("handle store is required")
	}
	if cfg.CRMEnabled && crmClient == nil {
		return nil, errors.New("crm client is required when crm logging is enabled")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Router{
		client: client,
		sender: sender,
		store:  store,
		crm:    crmClient,
		cfg:    cfg,
		logger: logger.Named("router"),
	}, nil
}

// HandleAction implements slack.ActionHandler. Per-step failure policy:
// email failures are swallowed after logging, the message update
// propagates, broadcasts and thread confirmations are swallowed, and a
// CRM failure is logged then returned.
func (r *Router) HandleAction(ctx context.Context, ev slack.ActionEvent) error {
	outcome, err := slack.OutcomeFromAction(ev.ActionID)
	if err != nil {
		r.logger.Debug("ignoring unknown action", zap.String("action", ev.ActionID))
		return nil
	}
	meta := outcomeTable[outcome]

	id := slack.RecordIDFromBlock(ev.BlockID)
	if id == "" {
		id = ev.Channel + "/" + ev.Timestamp
	}
	if err := r.store.MarkDecided(id, outcome); err != nil {
		if errors.Is(err, record.ErrAlreadyDecided) {
			r.logger.Info("duplicate decision ignored",
				zap.String("record_id", id),
				zap.String("outcome", string(outcome)))
			return nil
		}
		return err
	}
	httpapi.Decisions.WithLabelValues(string(outcome)).Inc()

	state := slack.ExtractState(ev.Blocks)
	r.logger.Info("handling decision",
		zap.String("record_id", id),
		zap.String("outcome", string(outcome)),
		zap.String("company", state.CompanyName))

	emailSentTo := r.sendEmail(ctx, outcome, state)

	ref := slack.MessageRef{Channel: ev.Channel, Timestamp: ev.Timestamp}
	decided := slack.RenderDecided(ev.Blocks, outcome, emailSentTo)
	if err := r.client.UpdateMessage(ctx, ref, "Decision: "+outcome.Label(), decided); err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	if channel := meta.broadcast(r.cfg); channel != "" {
		blocks := slack.RenderBroadcast(outcome, state.CompanyName, state.Summary)
		if _, err := r.client.PostMessage(ctx, channel, state.CompanyName+": "+outcome.Label(), blocks, ""); err != nil {
			r.logger.Warn("broadcast failed",
				zap.String("channel", channel), zap.Error(err))
		}
	}

	confirmation := "✅ Processed as: " + outcome.Label()
	if _, err := r.client.PostMessage(ctx, ev.Channel, confirmation, nil, ev.Timestamp); err != nil {
		r.logger.Warn("thread confirmation failed", zap.Error(err))
	}

	if r.cfg.CRMEnabled {
		if err := r.logInteraction(ctx, meta, state); err != nil {
			r.logger.Error("crm interaction failed",
				zap.String("record_id", id), zap.Error(err))
			return fmt.Errorf("failed to log crm interaction: %w", err)
		}
	}
	return nil
}

// sendEmail renders and delivers the outcome email. Returns the
// recipient on success, empty string on any failure.
func (r *Router) sendEmail(ctx context.Context, outcome record.Outcome, state slack.MessageState) string {
	body, err := email.RenderBody(outcome, email.TemplateData{
		CompanyName: state.CompanyName,
		Summary:     state.Summary,
		KeyPoints:   state.KeyPoints,
		NextSteps:   state.NextSteps,
	})
	if err != nil {
		httpapi.EmailsSent.WithLabelValues("failed").Inc()
		r.logger.Warn("email rendering failed", zap.Error(err))
		return ""
	}

	subject := email.Subject(outcome, state.CompanyName)
	if err := r.sender.Send(ctx, r.cfg.EmailRecipient, subject, body); err != nil {
		httpapi.EmailsSent.WithLabelValues("failed").Inc()
		r.logger.Warn("email delivery failed",
			zap.String("to", r.cfg.EmailRecipient), zap.Error(err))
		return ""
	}
	httpapi.EmailsSent.WithLabelValues("ok").Inc()
	return r.cfg.EmailRecipient
}

// logInteraction creates the CRM interaction, linked to a company entry
// when one matches the extracted name.
func (r *Router) logInteraction(ctx context.Context, meta outcomeMeta, state slack.MessageState) error {
	interaction := crm.Interaction{
		Subject:    meta.crmSubject + ": " + state.CompanyName,
		Notes:      interactionNotes(state),
		Date:       time.Now(),
		Type:       r.cfg.CRMInteractionType,
		AttendeeID: r.cfg.CRMAttendeeID,
	}

	entries, err := r.crm.Lookup(ctx, "Company")
	if err != nil {
		return err
	}
	if entry, ok := crm.MatchCompany(entries, state.CompanyName); ok {
		interaction.CompanyID = &entry.EntryID
	} else {
		r.logger.Warn("no crm company match, creating unlinked interaction",
			zap.String("company", state.CompanyName))
	}

	_, err = r.crm.CreateInteraction(ctx, interaction)
	return err
}

func interactionNotes(state slack.MessageState) string {
	var sb strings.Builder
	sb.WriteString(state.Summary)
	if len(state.KeyPoints) > 0 {
		sb.WriteString("\n\nKey Points:\n")
		for _, p := range state.KeyPoints {
			sb.WriteString("- " + p + "\n")
		}
	}
	if len(state.NextSteps) > 0 {
		sb.WriteString("\nNext Steps:\n")
		for _, s := range state.NextSteps {
			sb.WriteString("- " + s + "\n")
		}
	}
	return sb.String()
}
