package nlquery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	coreagg "github.com/aevon-lab/cc-reporting/internal/core/aggregation"
)

// opNamespace prefixes operator keys inside a where value.
const opNamespace = "Op."

// operators is the closed operator table. Keys outside it are ignored.
var operators = map[string]func(column string, value any) sq.Sqlizer{
	"eq":    func(c string, v any) sq.Sqlizer { return sq.Eq{c: v} },
	"ne":    func(c string, v any) sq.Sqlizer { return sq.NotEq{c: v} },
	"gt":    func(c string, v any) sq.Sqlizer { return sq.Gt{c: v} },
	"gte":   func(c string, v any) sq.Sqlizer { return sq.GtOrEq{c: v} },
	"lt":    func(c string, v any) sq.Sqlizer { return sq.Lt{c: v} },
	"lte":   func(c string, v any) sq.Sqlizer { return sq.LtOrEq{c: v} },
	"like":  func(c string, v any) sq.Sqlizer { return sq.Like{c: v} },
	"in":    func(c string, v any) sq.Sqlizer { return sq.Eq{c: asList(v)} },
	"notIn": func(c string, v any) sq.Sqlizer { return sq.NotEq{c: asList(v)} },
}

var (
	descriptorPattern = regexp.MustCompile(`^([A-Z]+)\(([a-z_]+)\)$`)
	aliasPattern      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Build turns a parsed plan into a single SELECT against its kind's table.
// findOne is limited to one row; findAll to maxRows.
func (p *Plan) Build(maxRows int) (sq.SelectBuilder, error) {
	c, err := lookup(p.Kind)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	columns, err := c.attributes(p.Options.Attributes)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	b := psql.Select(columns...).From(c.table)

	where, err := c.where(p.Options.Where)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	if len(where) > 0 {
		b = b.Where(where)
	}

	for _, col := range p.Options.Group {
		if !c.has(col) {
			return sq.SelectBuilder{}, fmt.Errorf("%w: unknown group column %q", ErrPlanStructure, col)
		}
	}
	if len(p.Options.Group) > 0 {
		b = b.GroupBy(p.Options.Group...)
	}

	order, err := c.order(p.Options.Order)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	if len(order) > 0 {
		b = b.OrderBy(order...)
	}

	limit := maxRows
	if p.Options.Limit != nil && *p.Options.Limit > 0 && *p.Options.Limit < limit {
		limit = *p.Options.Limit
	}
	if p.Method == MethodFindOne {
		limit = 1
	}
	return b.Limit(uint64(limit)), nil
}

// column converts a descriptor into a SQL expression. FUNCTION(column) with
// a known function becomes an aggregate; anything else must be a column name.
func (c catalog) column(descriptor string) (string, error) {
	if m := descriptorPattern.FindStringSubmatch(descriptor); m != nil && coreagg.ValidFunction(m[1]) {
		if !c.has(m[2]) {
			return "", fmt.Errorf("%w: unknown column %q in %s", ErrPlanStructure, m[2], descriptor)
		}
		return m[1] + "(" + m[2] + ")", nil
	}
	if !c.has(descriptor) {
		return "", fmt.Errorf("%w: unknown column %q for %s", ErrPlanStructure, descriptor, c.name)
	}
	return descriptor, nil
}

func (c catalog) attributes(raw []json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return c.columns, nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			expr, err := c.column(name)
			if err != nil {
				return nil, err
			}
			out = append(out, expr)
			continue
		}

		var pair []string
		if err := json.Unmarshal(item, &pair); err != nil || len(pair) != 2 {
			return nil, fmt.Errorf("%w: attribute must be a column or [descriptor, alias]", ErrPlanStructure)
		}
		expr, err := c.column(pair[0])
		if err != nil {
			return nil, err
		}
		if !aliasPattern.MatchString(pair[1]) {
			return nil, fmt.Errorf("%w: invalid alias %q", ErrPlanStructure, pair[1])
		}
		out = append(out, expr+` AS "`+pair[1]+`"`)
	}
	return out, nil
}

func (c catalog) where(raw map[string]json.RawMessage) (sq.And, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conds sq.And
	for _, col := range keys {
		if !c.has(col) {
			return nil, fmt.Errorf("%w: unknown filter column %q", ErrPlanStructure, col)
		}

		value, err := decodeValue(raw[col])
		if err != nil {
			return nil, err
		}
		ops, isObject := value.(map[string]any)
		if !isObject {
			// Scalars mean equality, arrays membership, null IS NULL.
			conds = append(conds, sq.Eq{col: value})
			continue
		}

		names := make([]string, 0, len(ops))
		for k := range ops {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, key := range names {
			name, namespaced := strings.CutPrefix(key, opNamespace)
			build, ok := operators[name]
			if !namespaced || !ok {
				slog.Warn("[NLQuery] Ignoring unknown operator", "column", col, "operator", key)
				continue
			}
			if _, nested := ops[key].(map[string]any); nested {
				return nil, fmt.Errorf("%w: operator %s on %q takes a value, not an object", ErrPlanStructure, key, col)
			}
			conds = append(conds, build(col, ops[key]))
		}
	}
	return conds, nil
}

func (c catalog) order(raw []json.RawMessage) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var (
			descriptor string
			direction  = "ASC"
		)
		var pair []string
		if err := json.Unmarshal(item, &pair); err == nil {
			if len(pair) == 0 || len(pair) > 2 {
				return nil, fmt.Errorf("%w: order item must be [column, direction]", ErrPlanStructure)
			}
			descriptor = pair[0]
			if len(pair) == 2 {
				direction = strings.ToUpper(pair[1])
			}
		} else if err := json.Unmarshal(item, &descriptor); err != nil {
			return nil, fmt.Errorf("%w: order item must be a column or [column, direction]", ErrPlanStructure)
		}

		if direction != "ASC" && direction != "DESC" {
			return nil, fmt.Errorf("%w: invalid order direction %q", ErrPlanStructure, direction)
		}
		expr, err := c.column(descriptor)
		if err != nil {
			return nil, err
		}
		out = append(out, expr+" "+direction)
	}
	return out, nil
}

// decodeValue keeps numbers exact so they bind as their literal text.
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanStructure, err)
	}
	return bindable(v), nil
}

// bindable converts decoded JSON numbers into driver-friendly values.
func bindable(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = bindable(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = bindable(t[k])
		}
		return t
	}
	return v
}

func asList(v any) any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}
