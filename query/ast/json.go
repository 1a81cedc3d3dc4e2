package ast

import (
	"encoding/json"
	"fmt"

	"github.com/satishbabariya/querykit/query/qerr"
)

// Condition trees serialize as tagged envelopes, one "kind" per node.
// Numeric values decode as float64 per encoding/json.

type conditionEnvelope struct {
	Kind          string            `json:"kind"`
	Field         string            `json:"field,omitempty"`
	Op            string            `json:"op,omitempty"`
	Value         any               `json:"value,omitempty"`
	Values        []any             `json:"values,omitempty"`
	CaseSensitive *bool             `json:"case_sensitive,omitempty"`
	Children      []json.RawMessage `json:"children,omitempty"`
}

// MarshalCondition encodes a condition tree as JSON.
func MarshalCondition(c Condition) ([]byte, error) {
	env, err := toEnvelope(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func toEnvelope(c Condition) (conditionEnvelope, error) {
	switch n := c.(type) {
	case EqualityCondition:
		return conditionEnvelope{Kind: "equality", Field: n.Field, Op: string(n.Op), Value: n.Value}, nil
	case ComparisonCondition:
		return conditionEnvelope{Kind: "comparison", Field: n.Field, Op: string(n.Op), Value: n.Value}, nil
	case PatternCondition:
		cs := n.CaseSensitive
		return conditionEnvelope{Kind: "pattern", Field: n.Field, Op: string(n.Op), Value: n.Value, CaseSensitive: &cs}, nil
	case SetCondition:
		return conditionEnvelope{Kind: "set", Field: n.Field, Op: string(n.Op), Values: n.Values}, nil
	case NullCondition:
		return conditionEnvelope{Kind: "null", Field: n.Field, Op: string(n.Op)}, nil
	case CompositeCondition:
		children := make([]json.RawMessage, len(n.Children))
		for i, child := range n.Children {
			raw, err := MarshalCondition(child)
			if err != nil {
				return conditionEnvelope{}, err
			}
			children[i] = raw
		}
		return conditionEnvelope{Kind: "composite", Op: string(n.Op), Children: children}, nil
	default:
		return conditionEnvelope{}, qerr.New(qerr.KindInvalidOperator, "cannot encode condition of type %T", c)
	}
}

// UnmarshalCondition decodes a condition tree from JSON, rejecting
// unknown kinds and operators.
func UnmarshalCondition(data []byte) (Condition, error) {
	var env conditionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, qerr.Wrap(qerr.KindInvalidSyntax, err, "malformed condition document")
	}
	return fromEnvelope(env)
}

func fromEnvelope(env conditionEnvelope) (Condition, error) {
	switch env.Kind {
	case "equality":
		switch EqualityOp(env.Op) {
		case OpEqual, OpNotEqual:
		default:
			return nil, badOp("equality", env.Op)
		}
		return EqualityCondition{Field: env.Field, Op: EqualityOp(env.Op), Value: env.Value}, nil
	case "comparison":
		switch ComparisonOp(env.Op) {
		case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		default:
			return nil, badOp("comparison", env.Op)
		}
		return ComparisonCondition{Field: env.Field, Op: ComparisonOp(env.Op), Value: env.Value}, nil
	case "pattern":
		switch PatternOp(env.Op) {
		case OpContains, OpStartsWith, OpEndsWith, OpMatches:
		default:
			return nil, badOp("pattern", env.Op)
		}
		value, _ := env.Value.(string)
		cs := true
		if env.CaseSensitive != nil {
			cs = *env.CaseSensitive
		}
		return PatternCondition{Field: env.Field, Op: PatternOp(env.Op), Value: value, CaseSensitive: cs}, nil
	case "set":
		switch SetOp(env.Op) {
		case OpIn, OpNotIn:
		default:
			return nil, badOp("set", env.Op)
		}
		return SetCondition{Field: env.Field, Op: SetOp(env.Op), Values: env.Values}, nil
	case "null":
		switch NullOp(env.Op) {
		case OpIsNull, OpIsNotNull:
		default:
			return nil, badOp("null", env.Op)
		}
		return NullCondition{Field: env.Field, Op: NullOp(env.Op)}, nil
	case "composite":
		switch CompositeOp(env.Op) {
		case OpAnd, OpOr, OpNot:
		default:
			return nil, badOp("composite", env.Op)
		}
		children := make([]Condition, len(env.Children))
		for i, raw := range env.Children {
			child, err := UnmarshalCondition(raw)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return CompositeCondition{Op: CompositeOp(env.Op), Children: children}, nil
	default:
		return nil, qerr.New(qerr.KindInvalidOperator, "unknown condition kind %q", env.Kind)
	}
}

func badOp(kind, op string) error {
	return qerr.New(qerr.KindInvalidOperator, "unknown %s operator %q", kind, op)
}

type queryEnvelope struct {
	Conditions   []json.RawMessage `json:"conditions,omitempty"`
	Ordering     []OrderBy         `json:"ordering,omitempty"`
	Projection   *Projection       `json:"projection,omitempty"`
	Pagination   *Pagination       `json:"pagination,omitempty"`
	Grouping     *GroupBy          `json:"grouping,omitempty"`
	Aggregations []Aggregation     `json:"aggregations,omitempty"`
	Having       *HavingCondition  `json:"having,omitempty"`
	Depth        *string           `json:"depth,omitempty"`
	Hints        *PerformanceHints `json:"hints,omitempty"`
}

// MarshalJSON encodes the query with tagged condition envelopes and the
// depth level by name.
func (q Query[T]) MarshalJSON() ([]byte, error) {
	env := queryEnvelope{
		Ordering:     q.Ordering,
		Projection:   q.Projection,
		Pagination:   q.Pagination,
		Grouping:     q.Grouping,
		Aggregations: q.Aggregations,
		Having:       q.Having,
		Hints:        q.Hints,
	}
	for _, c := range q.Conditions {
		raw, err := MarshalCondition(c)
		if err != nil {
			return nil, err
		}
		env.Conditions = append(env.Conditions, raw)
	}
	if q.Depth != nil {
		name := q.Depth.String()
		env.Depth = &name
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes a query document produced by MarshalJSON.
func (q *Query[T]) UnmarshalJSON(data []byte) error {
	var env queryEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return qerr.Wrap(qerr.KindInvalidSyntax, err, "malformed query document")
	}
	out := Query[T]{
		Ordering:     env.Ordering,
		Projection:   env.Projection,
		Pagination:   env.Pagination,
		Grouping:     env.Grouping,
		Aggregations: env.Aggregations,
		Having:       env.Having,
		Hints:        env.Hints,
	}
	for i, raw := range env.Conditions {
		c, err := UnmarshalCondition(raw)
		if err != nil {
			return fmt.Errorf("conditions[%d]: %w", i, err)
		}
		out.Conditions = append(out.Conditions, c)
	}
	if env.Depth != nil {
		d, ok := ParseDepth(*env.Depth)
		if !ok {
			return qerr.New(qerr.KindInvalidValue, "unknown depth level %q", *env.Depth)
		}
		out.Depth = &d
	}
	*q = out
	return nil
}
