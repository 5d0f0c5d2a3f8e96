package agents

import (
	"fmt"

	"stockscope/observability"
)

// validatorFunc inspects the merged state for one agent's data kind
// and returns whether it is usable plus a diagnostic message.
type validatorFunc func(state *AnalysisState) (bool, string)

var agentValidators = map[string]validatorFunc{
	AgentPrice:        validatePriceData,
	AgentFundamentals: validateFinancialMetrics,
	AgentAnalyst:      validateAnalystData,
	AgentSentiment:    validateSentimentData,
	AgentCompany:      validateCompanyData,
}

func validatePriceData(state *AnalysisState) (bool, string) {
	if state.Price == nil {
		return false, "No price data available"
	}
	if state.Price.Price <= 0 {
		return false, "Invalid price value"
	}
	if state.Price.Source == "" {
		return false, "Price data missing source"
	}
	return true, "Price data validated successfully"
}

func validateFinancialMetrics(state *AnalysisState) (bool, string) {
	if state.FinancialMetrics == nil {
		return false, "No financial metrics available (rate limited)"
	}
	// A sparse payload is acceptable; providers rate-limit fundamentals
	return true, "Financial metrics processed (may be limited due to API constraints)"
}

func validateAnalystData(state *AnalysisState) (bool, string) {
	if len(state.AnalystRatings) == 0 {
		return false, "No analyst ratings available"
	}
	for _, rating := range state.AnalystRatings {
		if rating.Firm == "" || rating.Rating == "" {
			return false, "Invalid rating structure"
		}
	}
	return true, fmt.Sprintf("Validated %d analyst ratings", len(state.AnalystRatings))
}

func validateSentimentData(state *AnalysisState) (bool, string) {
	if len(state.SentimentItems) == 0 && state.SentimentSummary == nil {
		return false, "No sentiment data available"
	}
	return true, fmt.Sprintf("Validated sentiment data with %d articles", len(state.SentimentItems))
}

func validateCompanyData(state *AnalysisState) (bool, string) {
	if state.CompanyName == nil || *state.CompanyName == "" {
		return false, "Company name not available"
	}
	return true, fmt.Sprintf("Company validated: %s", *state.CompanyName)
}

// ValidateAgentResult runs the validator for agent against state,
// records the outcome and, on failure, appends a diagnostic to the
// processing errors. Failures never block the analysis.
func ValidateAgentResult(agent string, state *AnalysisState) {
	validator, ok := agentValidators[agent]
	if !ok {
		observability.Warn("no validator for agent", "agent", agent)
		return
	}

	valid, message := validator(state)
	state.ValidationResults[agent] = valid

	if valid {
		observability.WithAgent(agent).Info("validation passed",
			"symbol", state.Symbol,
			"message", message)
		return
	}

	observability.WithAgent(agent).Warn("validation failed",
		"symbol", state.Symbol,
		"message", message)
	observability.GetMetrics().RecordValidationFailure(agent)
	state.AddError(fmt.Sprintf("%s: %s", agent, message))
}
