package extraction

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dealflowhq/dealflow/internal/record"
)

// basicPrompt drives the mandatory summary/key-points step. The JSON-only
// instruction is deliberately strict; responses are still parsed
// defensively with LooseJSON.
const basicPrompt = `You are a JSON-only output AI assistant that analyzes meeting transcripts.
Your ONLY role is to output a valid JSON object with this exact structure:
{
    "summary": "2-3 sentence summary of key points",
    "key_points": ["key point 1", "key point 2", "key point 3"],
    "next_steps": ["agreed next step 1"]
}

Critical requirements:
1. Output MUST be a valid JSON object - nothing else
2. No markdown, no code blocks, no explanations
3. No additional fields or formatting
4. Summary should be 2-3 concise, business-focused sentences
5. Include 3-5 key points as bullet points
6. next_steps lists explicitly agreed follow-up actions; use [] if none

Example valid response:
{"summary":"Company X presented Q4 results showing 20% growth. New product launch planned for Q2.","key_points":["Revenue grew 20% YoY","New product launching in Q2","Expanding into APAC market"],"next_steps":["Send term sheet by Friday"]}`

const companyPrompt = `You are a JSON-only output AI assistant that extracts company information.
Your ONLY role is to output a valid JSON object with this exact structure:
{
    "name": "company name",
    "industry": "ai|saas|fintech|healthcare|biotech|other",
    "stage": "seed|series_a|series_b|series_c|growth",
    "revenue": number or null,
    "growth_rate": number or null,
    "location": "location or null"
}

Critical requirements:
1. Output MUST be a valid JSON object - nothing else
2. No markdown, no code blocks, no explanations
3. Use exactly the fields shown above
4. Use null for missing information

Example valid response:
{"name":"Acme Corp","industry":"saas","stage":"series_b","revenue":5000000,"growth_rate":150,"location":"San Francisco"}`

const participantsPrompt = `You are a JSON-only output AI assistant that extracts participant information.
Your ONLY role is to output a valid JSON object with this exact structure:
{
    "participants": [
        {
            "name": "participant name",
            "role": "role or null",
            "company": "company name or null",
            "key_points": ["point 1", "point 2"]
        }
    ]
}

Critical requirements:
1. Output MUST be a valid JSON object - nothing else
2. No markdown, no code blocks, no explanations
3. Use exactly the fields shown above
4. Use null for missing information

Example valid response:
{"participants":[{"name":"John Smith","role":"CEO","company":"Acme Corp","key_points":["Discussed Q4 results","Presented growth strategy"]}]}`

// criteriaContext renders fund criteria as reference context for the
// company step. Criteria inform the model about what matters to the funds;
// nothing downstream enforces them.
func criteriaContext(funds map[string]record.FundCriteria) string {
	if len(funds) == 0 {
		return ""
	}

	names := make([]string, 0, len(funds))
	for name := range funds {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("\n\nReference fund criteria (context only, do not output):\n")
	for _, name := range names {
		data, err := json.Marshal(funds[name])
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", name, data)
	}
	return b.String()
}
