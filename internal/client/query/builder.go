package query

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Amawers/idmsystem-sub001/internal/client/api"
	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

// Poster is the slice of the pipeline the builder needs to execute its
// compiled request.
type Poster interface {
	Do(ctx context.Context, path string, opts api.Options) (*api.Response, error)
}

const (
	actionSelect = "select"
	actionInsert = "insert"
	actionUpdate = "update"
	actionDelete = "delete"
)

type singleMode int

const (
	singleNone singleMode = iota
	singleRequired
	singleOptional
)

// validOperators is the closed set accepted inside .Or() expressions;
// anything else makes the segment drop silently.
var validOperators = map[string]struct{}{
	"eq": {}, "neq": {}, "gt": {}, "gte": {}, "lt": {}, "lte": {},
	"like": {}, "ilike": {}, "is": {}, "in": {},
}

// Builder accumulates chained read/write operations against one logical
// table. Chain calls mutate state synchronously and return the builder;
// nothing touches the network until Execute.
type Builder struct {
	pipe Poster
	log  logging.Logger

	table     string
	action    string
	columns   []string
	filters   []Filter
	groups    []OrGroup
	order     []Order
	limit     *int
	offset    *int
	payload   any
	returning []string
	count     string
	single    singleMode
}

// NewBuilder starts a read query over table, projecting all columns.
func NewBuilder(pipe Poster, log logging.Logger, table string) *Builder {
	return &Builder{
		pipe:    pipe,
		log:     log,
		table:   table,
		action:  actionSelect,
		columns: []string{"*"},
	}
}

// splitColumns flattens the accepted projection spellings ("*", comma
// separated strings, individual names) into a trimmed list, dropping
// empty entries.
func splitColumns(columns []string) []string {
	var out []string
	for _, c := range columns {
		for _, part := range strings.Split(c, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Select sets the projection. On a builder already switched to a write
// action it instead sets the returning projection for the write response,
// leaving the action untouched.
func (b *Builder) Select(columns ...string) *Builder {
	cols := splitColumns(columns)
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	if b.action != actionSelect {
		b.returning = cols
		return b
	}
	b.columns = cols
	return b
}

// Count requests a match-count mode alongside the rows.
func (b *Builder) Count(mode string) *Builder {
	b.count = mode
	return b
}

// Insert switches the builder to an insert carrying values. Previously
// chained filters and projections are kept, so ordering of chain calls
// does not matter.
func (b *Builder) Insert(values any) *Builder {
	b.action = actionInsert
	b.payload = values
	return b
}

// Update switches the builder to an update carrying values.
func (b *Builder) Update(values any) *Builder {
	b.action = actionUpdate
	b.payload = values
	return b
}

// Delete switches the builder to a delete; no payload is required.
func (b *Builder) Delete() *Builder {
	b.action = actionDelete
	return b
}

func (b *Builder) appendFilter(column, operator string, value any) *Builder {
	b.filters = append(b.filters, Filter{Column: column, Operator: operator, Value: value})
	return b
}

func (b *Builder) Eq(column string, value any) *Builder  { return b.appendFilter(column, "eq", value) }
func (b *Builder) Neq(column string, value any) *Builder { return b.appendFilter(column, "neq", value) }
func (b *Builder) Gt(column string, value any) *Builder  { return b.appendFilter(column, "gt", value) }
func (b *Builder) Gte(column string, value any) *Builder { return b.appendFilter(column, "gte", value) }
func (b *Builder) Lt(column string, value any) *Builder  { return b.appendFilter(column, "lt", value) }
func (b *Builder) Lte(column string, value any) *Builder { return b.appendFilter(column, "lte", value) }
func (b *Builder) Like(column string, value any) *Builder {
	return b.appendFilter(column, "like", value)
}
func (b *Builder) ILike(column string, value any) *Builder {
	return b.appendFilter(column, "ilike", value)
}
func (b *Builder) Is(column string, value any) *Builder { return b.appendFilter(column, "is", value) }

// In appends one AND filter whose value is the whole list.
func (b *Builder) In(column string, values ...any) *Builder {
	return b.appendFilter(column, "in", values)
}

// Or parses a comma-separated list of "column.operator.value" triples into
// one OR-group. Malformed segments are dropped silently (a debug-level
// trace is emitted so the drop is observable); surviving segments still
// form the group. Multiple Or calls yield independent groups, each
// AND-combined with everything else.
func (b *Builder) Or(expression string) *Builder {
	var group []Filter
	for _, segment := range strings.Split(expression, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		parts := strings.SplitN(segment, ".", 3)
		if len(parts) != 3 {
			b.log.Debug(context.Background(), "dropping malformed or-segment", "segment", segment)
			continue
		}
		if _, ok := validOperators[parts[1]]; !ok {
			b.log.Debug(context.Background(), "dropping or-segment with unknown operator", "segment", segment)
			continue
		}
		group = append(group, Filter{Column: parts[0], Operator: parts[1], Value: parts[2]})
	}
	if len(group) > 0 {
		b.groups = append(b.groups, OrGroup{Operator: "or", Filters: group})
	}
	return b
}

// Order appends one sort key; keys apply in call order.
func (b *Builder) Order(column string, ascending bool) *Builder {
	direction := "asc"
	if !ascending {
		direction = "desc"
	}
	b.order = append(b.order, Order{Column: column, Direction: direction})
	return b
}

// Limit caps the row count.
func (b *Builder) Limit(n int) *Builder {
	b.limit = &n
	return b
}

// Range selects the inclusive row window [from, to], overwriting any
// previously set limit.
func (b *Builder) Range(from, to int) *Builder {
	limit := to - from + 1
	b.offset = &from
	b.limit = &limit
	return b
}

// Single makes Execute require exactly one row; zero rows is a hard
// failure (api.ErrNoRows).
func (b *Builder) Single() *Builder {
	b.single = singleRequired
	return b
}

// MaybeSingle makes Execute tolerate zero rows (nil data, no error) and
// take the first row when one or more match. No uniqueness check.
func (b *Builder) MaybeSingle() *Builder {
	b.single = singleOptional
	return b
}

// Compile serializes the current state into the request envelope. Each
// call builds a fresh envelope from whatever has accumulated so far.
func (b *Builder) Compile() *Envelope {
	env := &Envelope{
		Action:    b.action,
		Table:     b.table,
		Columns:   append([]string(nil), b.columns...),
		Filters:   append([]Filter(nil), b.filters...),
		Groups:    append([]OrGroup(nil), b.groups...),
		Order:     append([]Order(nil), b.order...),
		Values:    b.payload,
		Returning: append([]string(nil), b.returning...),
		Count:     b.count,
	}
	if b.limit != nil || b.offset != nil {
		env.Range = &Range{Limit: b.limit, Offset: b.offset}
	}
	return env
}

// Result is the uniform query outcome. Data is the coerced row slice, or
// a single row (possibly nil) when a single mode was requested; Count is
// the full match count when one was asked for.
type Result struct {
	Data  any
	Count *int64
}

// Decode round-trips Data into v for callers with a concrete row type.
func (r *Result) Decode(v any) error {
	data, err := json.Marshal(r.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Execute compiles the accumulated state and POSTs it to the generic
// query endpoint. Compilation and the network call happen on every
// invocation; executing the same builder twice sends two requests.
func (b *Builder) Execute(ctx context.Context) (*Result, error) {
	resp, err := b.pipe.Do(ctx, "/query", api.Options{
		Method: http.MethodPost,
		Body:   b.Compile(),
	})
	if err != nil {
		return nil, err
	}

	rows, err := coerceRows(resp.Data)
	if err != nil {
		return nil, err
	}

	result := &Result{Count: resp.Meta.Count}
	switch b.single {
	case singleRequired:
		if len(rows) == 0 {
			return nil, api.ErrNoRows
		}
		result.Data = rows[0]
	case singleOptional:
		if len(rows) == 0 {
			result.Data = nil
			break
		}
		if len(rows) > 1 {
			b.log.Warn(ctx, "maybeSingle matched multiple rows, taking the first",
				"table", b.table, "rows", len(rows))
		}
		result.Data = rows[0]
	default:
		result.Data = rows
	}
	return result, nil
}

// coerceRows normalizes the data payload to array form: null and missing
// become no rows, a bare object becomes a one-element slice.
func coerceRows(raw json.RawMessage) ([]map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, nil
	}
	var row map[string]any
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("unexpected query response shape: %w", err)
	}
	return []map[string]any{row}, nil
}
