package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRiskLevel is returned for a risk label outside the fixed set.
var ErrUnknownRiskLevel = errors.New("unknown risk level")

// RiskLevel is the investor preference sent to the backend. The Korean
// labels are the wire values.
type RiskLevel string

const (
	RiskConservative RiskLevel = "보수적"
	RiskNeutral      RiskLevel = "중립"
	RiskAggressive   RiskLevel = "공격적"
)

var riskAliases = map[string]RiskLevel{
	"conservative": RiskConservative,
	"neutral":      RiskNeutral,
	"aggressive":   RiskAggressive,
}

// RiskLevels lists the levels in display order.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskConservative, RiskNeutral, RiskAggressive}
}

// Valid reports whether r is one of the three known levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskConservative, RiskNeutral, RiskAggressive:
		return true
	}
	return false
}

// English returns the English alias, e.g. "neutral".
func (r RiskLevel) English() string {
	for alias, lvl := range riskAliases {
		if lvl == r {
			return alias
		}
	}
	return string(r)
}

func (r RiskLevel) String() string { return string(r) }

// ParseRiskLevel accepts the Korean label or its English alias
// (case-insensitive).
func ParseRiskLevel(s string) (RiskLevel, error) {
	s = strings.TrimSpace(s)
	if lvl := RiskLevel(s); lvl.Valid() {
		return lvl, nil
	}
	if lvl, ok := riskAliases[strings.ToLower(s)]; ok {
		return lvl, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRiskLevel, s)
}
