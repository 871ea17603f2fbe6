package agent

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SupportResult is the structured verdict of a support run.
type SupportResult struct {
	SupportAdvice      string `json:"support_advice"`
	EscalationRequired bool   `json:"escalation_required"`
	RiskLevel          int    `json:"risk_level"`
}

// parseSupportResult extracts the result object from the model's
// terminal message. Models wrap JSON in markdown fences or prose often
// enough that we locate the outermost object instead of unmarshalling
// the raw content. Every failure mode is a *ValidationError so the
// loop can feed it back to the model.
func parseSupportResult(content string) (*SupportResult, error) {
	content = strings.TrimSpace(content)

	jsonStart := strings.Index(content, "{")
	jsonEnd := strings.LastIndex(content, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return nil, &ValidationError{Reason: "the answer must be a single JSON object with fields support_advice, escalation_required and risk_level"}
	}

	jsonStr := content[jsonStart : jsonEnd+1]

	var raw struct {
		SupportAdvice      *string         `json:"support_advice"`
		EscalationRequired json.RawMessage `json:"escalation_required"`
		RiskLevel          *json.Number    `json:"risk_level"`
	}

	dec := json.NewDecoder(strings.NewReader(jsonStr))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &ValidationError{Reason: "the answer is not valid JSON: " + err.Error()}
	}

	if raw.SupportAdvice == nil || strings.TrimSpace(*raw.SupportAdvice) == "" {
		return nil, &ValidationError{Reason: "support_advice is required and must be a non-empty string"}
	}

	escalation, err := coerceBool(raw.EscalationRequired)
	if err != nil {
		return nil, &ValidationError{Reason: "escalation_required must be a boolean"}
	}

	if raw.RiskLevel == nil {
		return nil, &ValidationError{Reason: "risk_level is required and must be an integer"}
	}
	riskLevel, err := raw.RiskLevel.Int64()
	if err != nil {
		return nil, &ValidationError{Reason: "risk_level must be an integer, got " + raw.RiskLevel.String()}
	}

	result := &SupportResult{
		SupportAdvice:      strings.TrimSpace(*raw.SupportAdvice),
		EscalationRequired: escalation,
		RiskLevel:          int(riskLevel),
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// Validate enforces the result contract. An out-of-range risk level is
// rejected, never clamped.
func (r *SupportResult) Validate() error {
	if strings.TrimSpace(r.SupportAdvice) == "" {
		return &ValidationError{Reason: "support_advice is required and must be a non-empty string"}
	}
	if r.RiskLevel < 0 || r.RiskLevel > 10 {
		return &ValidationError{Reason: "risk_level must be between 0 and 10, got " + strconv.Itoa(r.RiskLevel)}
	}
	return nil
}

// coerceBool accepts a JSON boolean or its string form. Absence means
// no escalation.
func coerceBool(raw json.RawMessage) (bool, error) {
	if len(raw) == 0 {
		return false, nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		parsed, err := strconv.ParseBool(strings.TrimSpace(s))
		if err == nil {
			return parsed, nil
		}
	}

	return false, &ValidationError{Reason: "escalation_required must be a boolean"}
}
