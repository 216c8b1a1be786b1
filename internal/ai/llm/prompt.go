package llm

import (
	"encoding/json"
	"fmt"

	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// Temperature keeps narratives close to the numbers.
const Temperature = 0.1

// MaxTokens caps the narrative length.
const MaxTokens = 2048

// SystemPrompt frames the model as the agency's CFO.
const SystemPrompt = `You are an expert CFO with a strategic mind for agency profitability.
You look at the hard numbers (contracts against logged hours) and decide which clients are
over-serviced (burning budget) or under-serviced. You do not just calculate: you provide
strategic insights and warnings. You care about effective hourly rate and budget variance.
Use only the figures you are given. Never invent data.`

// UserPrompt renders the analysis for the model and describes the expected answer.
func UserPrompt(req models.NarrativeRequest) (string, error) {
	data, err := json.MarshalIndent(req.Analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal analysis: %w", err)
	}

	return fmt.Sprintf(`Analyze the financial health of workspace %q.

Budget analysis (revenue against hours logged times hourly cost, per client):
%s

Respond with a single fenced json code block containing:
- "overall_health": "Healthy" | "At Risk" | "Critical"
- "financial_summary": text
- "alerts": list of objects with "client", "variance" and "warning_message"
- "strategic_advice": text explaining why the discrepancies might be happening`, req.WorkspaceID, data), nil
}
