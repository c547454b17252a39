package dfapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

// Query describes filter, pagination and projection intent for a list call.
//
// A nil pointer or nil slice means "use the server default". Fields and
// Related are always sent and fall back to "*" when empty.
type Query struct {
	IDs           []int
	Filter        *string
	Limit         *int
	Offset        *int
	Order         *string
	Fields        []string
	Related       []string
	IncludeCount  *bool
	IncludeSchema *bool
}

// NewQuery creates a query that requests all fields and nothing else.
func NewQuery() *Query {
	return &Query{
		Fields: []string{constants.AllSentinel},
	}
}

// WithIDs restricts the query to the given record identifiers.
func (q *Query) WithIDs(ids ...int) *Query {
	q.IDs = append(q.IDs, ids...)

	return q
}

// WithFilter sets the filter expression. It is sent verbatim.
func (q *Query) WithFilter(filter string) *Query {
	q.Filter = &filter

	return q
}

// WithLimit sets the maximum number of records to return.
func (q *Query) WithLimit(limit int) *Query {
	q.Limit = &limit

	return q
}

// WithOffset sets the index of the first record to return.
func (q *Query) WithOffset(offset int) *Query {
	q.Offset = &offset

	return q
}

// WithOrder sets the order clause, e.g. "name DESC". It is sent verbatim.
func (q *Query) WithOrder(order string) *Query {
	q.Order = &order

	return q
}

// WithFields replaces the field projection.
func (q *Query) WithFields(fields ...string) *Query {
	q.Fields = fields

	return q
}

// WithRelated replaces the list of related resources to expand.
func (q *Query) WithRelated(related ...string) *Query {
	q.Related = related

	return q
}

// WithIncludeCount asks the server to report the total record count.
func (q *Query) WithIncludeCount(include bool) *Query {
	q.IncludeCount = &include

	return q
}

// WithIncludeSchema asks the server to include the table schema.
func (q *Query) WithIncludeSchema(include bool) *Query {
	q.IncludeSchema = &include

	return q
}

// Validate rejects values the server could never accept.
func (q *Query) Validate() error {
	if q == nil {
		return nil
	}

	if q.Limit != nil && *q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidQuery, *q.Limit)
	}

	if q.Offset != nil && *q.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidQuery, *q.Offset)
	}

	for _, id := range q.IDs {
		if id <= 0 {
			return fmt.Errorf("%w: ids must be positive, got %d", ErrInvalidQuery, id)
		}
	}

	return nil
}

// ToValues converts the query into URL query parameters.
func (q *Query) ToValues() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	if len(q.IDs) > 0 {
		values.Set(constants.ParamIDs, JoinIDs(q.IDs))
	}

	if q.Filter != nil {
		values.Set(constants.ParamFilter, *q.Filter)
	}

	if q.Limit != nil {
		values.Set(constants.ParamLimit, strconv.Itoa(*q.Limit))
	}

	if q.Offset != nil {
		values.Set(constants.ParamOffset, strconv.Itoa(*q.Offset))
	}

	if q.Order != nil {
		values.Set(constants.ParamOrder, *q.Order)
	}

	values.Set(constants.ParamFields, joinOrAll(q.Fields))
	values.Set(constants.ParamRelated, joinOrAll(q.Related))

	if q.IncludeCount != nil {
		values.Set(constants.ParamIncludeCount, strconv.FormatBool(*q.IncludeCount))
	}

	if q.IncludeSchema != nil {
		values.Set(constants.ParamIncludeSchema, strconv.FormatBool(*q.IncludeSchema))
	}

	return values
}

// JoinIDs renders identifiers the way the ids parameter expects them.
func JoinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	return strings.Join(parts, ",")
}

func joinOrAll(names []string) string {
	if len(names) == 0 {
		return constants.AllSentinel
	}

	return strings.Join(names, ",")
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
