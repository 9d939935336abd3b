package condition

import (
	"fmt"
	"strings"
	"time"
)

// Rule is a single field comparison against an event payload.
type Rule struct {
	Field    string      `json:"field" bson:"field"`
	Operator string      `json:"operator" bson:"operator"`
	Value    interface{} `json:"value" bson:"value"`
}

// RuleGroup combines rules and nested groups with AND/OR semantics. An empty
// group matches everything.
type RuleGroup struct {
	Operator string      `json:"operator" bson:"operator"`
	Rules    []Rule      `json:"rules,omitempty" bson:"rules,omitempty"`
	Groups   []RuleGroup `json:"groups,omitempty" bson:"groups,omitempty"`
}

type Matcher struct {
	Payload map[string]interface{}
}

func NewMatcher(payload map[string]interface{}) *Matcher {
	return &Matcher{Payload: payload}
}

// Matches evaluates the group against the payload.
func (m *Matcher) Matches(group *RuleGroup) (bool, error) {
	if group == nil {
		return true, nil
	}

	var results []bool

	for _, rule := range group.Rules {
		ok, err := m.matchRule(rule)
		if err != nil {
			return false, err
		}
		results = append(results, ok)
	}

	for i := range group.Groups {
		ok, err := m.Matches(&group.Groups[i])
		if err != nil {
			return false, err
		}
		results = append(results, ok)
	}

	if len(results) == 0 {
		return true, nil
	}

	if strings.ToUpper(group.Operator) == "OR" {
		for _, r := range results {
			if r {
				return true, nil
			}
		}
		return false, nil
	}

	for _, r := range results {
		if !r {
			return false, nil
		}
	}
	return true, nil
}

func (m *Matcher) matchRule(rule Rule) (bool, error) {
	actual, ok := m.Payload[rule.Field]
	if !ok {
		return false, nil
	}

	switch rule.Operator {
	case "eq":
		return equal(actual, rule.Value), nil
	case "ne":
		return !equal(actual, rule.Value), nil
	case "gt", "lt", "gte", "lte":
		return compareNumeric(actual, rule.Value, rule.Operator)
	case "in":
		return contained(actual, rule.Value), nil
	case "nin":
		return !contained(actual, rule.Value), nil
	case "contains":
		a, b, err := stringPair(actual, rule.Value)
		if err != nil {
			return false, err
		}
		return strings.Contains(strings.ToLower(a), strings.ToLower(b)), nil
	case "startsWith", "starts_with":
		a, b, err := stringPair(actual, rule.Value)
		if err != nil {
			return false, err
		}
		return strings.HasPrefix(strings.ToLower(a), strings.ToLower(b)), nil
	case "endsWith", "ends_with":
		a, b, err := stringPair(actual, rule.Value)
		if err != nil {
			return false, err
		}
		return strings.HasSuffix(strings.ToLower(a), strings.ToLower(b)), nil
	default:
		return false, fmt.Errorf("unknown operator: %s", rule.Operator)
	}
}

func equal(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func contained(actual, list interface{}) bool {
	items, ok := list.([]interface{})
	if !ok {
		if strs, ok := list.([]string); ok {
			for _, s := range strs {
				if equal(actual, s) {
					return true
				}
			}
		}
		return false
	}
	for _, item := range items {
		if equal(actual, item) {
			return true
		}
	}
	return false
}

func compareNumeric(actual, expected interface{}, op string) (bool, error) {
	a, aok := toFloat(actual)
	b, bok := toFloat(expected)
	if !aok || !bok {
		return false, fmt.Errorf("%s operator requires numeric values", op)
	}
	switch op {
	case "gt":
		return a > b, nil
	case "lt":
		return a < b, nil
	case "gte":
		return a >= b, nil
	default:
		return a <= b, nil
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case time.Duration:
		return float64(n), true
	default:
		return 0, false
	}
}

func stringPair(a, b interface{}) (string, string, error) {
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return "", "", fmt.Errorf("string operator requires string values")
	}
	return as, bs, nil
}
