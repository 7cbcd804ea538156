// Package email renders decision notification emails and delivers them
// over SMTP.
package email

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/dealflowhq/dealflow/internal/record"
)

// TemplateData is the flat record content rendered into an email body.
type TemplateData struct {
	CompanyName string
	Summary     string
	KeyPoints   []string
	NextSteps   []string
}

// Each outcome maps to exactly one template. The mapping is static;
// record content never selects the template.
var bodyTemplates = map[record.Outcome]*template.Template{
	record.OutcomeUrgent: template.Must(template.New("urgent").Parse(`
<h2>Urgent Follow-Up Required: {{.CompanyName}}</h2>

<h3>Meeting Summary</h3>
<p>{{.Summary}}</p>

<h3>Key Points</h3>
<ul>
{{range .KeyPoints}}    <li>{{.}}</li>
{{end}}</ul>

<h3>Next Steps</h3>
<ul>
{{range .NextSteps}}    <li>{{.}}</li>
{{end}}</ul>

<p><strong>Please review and take action as soon as possible.</strong></p>
`)),
	record.OutcomeFundNotUrgent: template.Must(template.New("fund_not_urgent").Parse(`
<h2>Fund Follow-Up: {{.CompanyName}}</h2>

<h3>Meeting Summary</h3>
<p>{{.Summary}}</p>

<h3>Key Points</h3>
<ul>
{{range .KeyPoints}}    <li>{{.}}</li>
{{end}}</ul>

<h3>Suggested Next Steps</h3>
<ul>
{{range .NextSteps}}    <li>{{.}}</li>
{{end}}</ul>
`)),
	record.OutcomeFutureFund: template.Must(template.New("future_fund").Parse(`
<h2>Future Fund Opportunity: {{.CompanyName}}</h2>

<h3>Meeting Summary</h3>
<p>{{.Summary}}</p>

<h3>Key Points</h3>
<ul>
{{range .KeyPoints}}    <li>{{.}}</li>
{{end}}</ul>

<h3>Follow-Up Plan</h3>
<ul>
{{range .NextSteps}}    <li>{{.}}</li>
{{end}}</ul>

<p>This opportunity has been noted for future fund consideration.</p>
`)),
	record.OutcomeNotInterested: template.Must(template.New("not_interested").Parse(`
<h2>Investment Opportunity Review: {{.CompanyName}}</h2>

<h3>Meeting Summary</h3>
<p>{{.Summary}}</p>

<h3>Key Points</h3>
<ul>
{{range .KeyPoints}}    <li>{{.}}</li>
{{end}}</ul>

<p>Based on our current investment criteria and strategy, we will not be pursuing this opportunity further at this time.</p>
`)),
}

var subjectPrefixes = map[record.Outcome]string{
	record.OutcomeUrgent:        "URGENT Follow-Up Required",
	record.OutcomeFundNotUrgent: "Fund Follow-Up",
	record.OutcomeFutureFund:    "Future Fund Opportunity",
	record.OutcomeNotInterested: "Investment Opportunity Review",
}

// Subject returns the outcome's subject line for a company.
func Subject(outcome record.Outcome, companyName string) string {
	prefix, ok := subjectPrefixes[outcome]
	if !ok {
		prefix = "Follow-Up"
	}
	return fmt.Sprintf("%s: %s", prefix, companyName)
}

// RenderBody renders the outcome's HTML body from record content.
func RenderBody(outcome record.Outcome, data TemplateData) (string, error) {
	tmpl, ok := bodyTemplates[outcome]
	if !ok {
		return "", fmt.Errorf("no email template for outcome %q", outcome)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", outcome, err)
	}
	return sb.String(), nil
}
