// Package query evaluates Mongo-style filter queries against run start
// documents. It covers the structural subset catalog filters use: implicit
// equality, logical composition, comparisons, membership, existence, and
// regular expressions. Full-text ($text) clauses are handled by the store,
// not here.
package query

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/runcat-io/runcat/pkg/documents"
)

// Query is a Mongo-style filter document.
type Query = map[string]any

// And combines two queries, preserving the nesting of earlier combinations
// rather than flattening them. An empty query contributes nothing and is
// elided.
func And(a, b Query) Query {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	return Query{"$and": []any{a, b}}
}

// Match reports whether doc satisfies q. An empty query matches everything.
func Match(q Query, doc documents.Document) (bool, error) {
	for key, cond := range q {
		ok, err := matchClause(key, cond, doc)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchClause(key string, cond any, doc documents.Document) (bool, error) {
	switch key {
	case "$and":
		subs, err := subQueries(key, cond)
		if err != nil {
			return false, err
		}
		for _, sub := range subs {
			ok, err := Match(sub, doc)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case "$or":
		subs, err := subQueries(key, cond)
		if err != nil {
			return false, err
		}
		for _, sub := range subs {
			ok, err := Match(sub, doc)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case "$not":
		sub, ok := cond.(map[string]any)
		if !ok {
			return false, fmt.Errorf("$not expects a query document, got %T", cond)
		}
		matched, err := Match(sub, doc)
		return !matched, err
	}
	if strings.HasPrefix(key, "$") {
		return false, fmt.Errorf("unsupported operator %q", key)
	}

	value, present := lookup(doc, key)
	if ops, ok := cond.(map[string]any); ok && isOperatorDoc(ops) {
		return matchOps(key, ops, value, present)
	}
	return present && equal(value, cond), nil
}

func matchOps(field string, ops map[string]any, value any, present bool) (bool, error) {
	for op, arg := range ops {
		var ok bool
		switch op {
		case "$eq":
			ok = present && equal(value, arg)
		case "$ne":
			ok = !present || !equal(value, arg)
		case "$exists":
			want, isBool := arg.(bool)
			if !isBool {
				return false, fmt.Errorf("%s: $exists expects a bool, got %T", field, arg)
			}
			ok = present == want
		case "$in":
			list, err := valueList(op, arg)
			if err != nil {
				return false, fmt.Errorf("%s: %w", field, err)
			}
			ok = present && contains(list, value)
		case "$nin":
			list, err := valueList(op, arg)
			if err != nil {
				return false, fmt.Errorf("%s: %w", field, err)
			}
			ok = !present || !contains(list, value)
		case "$gt", "$gte", "$lt", "$lte":
			if !present {
				return false, nil
			}
			cmp, comparable := compare(value, arg)
			if !comparable {
				return false, nil
			}
			switch op {
			case "$gt":
				ok = cmp > 0
			case "$gte":
				ok = cmp >= 0
			case "$lt":
				ok = cmp < 0
			case "$lte":
				ok = cmp <= 0
			}
		case "$regex":
			pattern, isStr := arg.(string)
			if !isStr {
				return false, fmt.Errorf("%s: $regex expects a string, got %T", field, arg)
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return false, fmt.Errorf("%s: %w", field, err)
			}
			s, isStr := value.(string)
			ok = present && isStr && re.MatchString(s)
		default:
			return false, fmt.Errorf("%s: unsupported operator %q", field, op)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// lookup resolves a dotted field path inside the document.
func lookup(doc documents.Document, path string) (any, bool) {
	var value any = doc
	for part := range strings.SplitSeq(path, ".") {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return value, true
}

// isOperatorDoc reports whether every key of the condition is an operator,
// which distinguishes {"$gt": 5} from a literal sub-document match.
func isOperatorDoc(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func subQueries(op string, cond any) ([]Query, error) {
	list, ok := cond.([]any)
	if !ok {
		return nil, fmt.Errorf("%s expects an array of queries, got %T", op, cond)
	}
	subs := make([]Query, 0, len(list))
	for _, e := range list {
		sub, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s expects query documents, got %T", op, e)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func valueList(op string, arg any) ([]any, error) {
	list, ok := arg.([]any)
	if !ok {
		return nil, fmt.Errorf("%s expects an array, got %T", op, arg)
	}
	return list, nil
}

func contains(list []any, value any) bool {
	for _, e := range list {
		if equal(value, e) {
			return true
		}
	}
	return false
}

// equal compares document and query values, treating all numeric encodings
// as one domain (JSON decodes numbers to float64, msgpack to sized ints).
func equal(a, b any) bool {
	if fa, aok := toFloat(a); aok {
		fb, bok := toFloat(b)
		return bok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// compare returns the ordering of a vs b for numbers and strings.
func compare(a, b any) (int, bool) {
	if fa, aok := toFloat(a); aok {
		fb, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}
	sa, aok := a.(string)
	sb, bok := b.(string)
	if aok && bok {
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
