package dfserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

var errBadFilter = errors.New("invalid filter")

type condition struct {
	field string
	value string
}

func (c *collection) insert(record Record) int {
	stored := clone(record)

	id := toInt(stored["id"])
	if id <= 0 {
		id = c.nextID
	}

	if id >= c.nextID {
		c.nextID = id + 1
	}

	stored["id"] = id
	c.records[id] = stored
	c.order = append(c.order, id)

	return id
}

func (c *collection) remove(id int) {
	delete(c.records, id)

	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)

			break
		}
	}
}

func (c *collection) hasName(name string) bool {
	for _, record := range c.records {
		if record["name"] == name {
			return true
		}
	}

	return false
}

func (c *collection) selectRecords(query url.Values) ([]Record, error) {
	conditions, err := parseFilter(query.Get(constants.ParamFilter))
	if err != nil {
		return nil, err
	}

	var wanted map[int]bool

	if raw := query.Get(constants.ParamIDs); raw != "" {
		ids, err := parseIDs(raw)
		if err != nil {
			return nil, err
		}

		wanted = make(map[int]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
	}

	matched := make([]Record, 0, len(c.order))

	for _, id := range c.order {
		if wanted != nil && !wanted[id] {
			continue
		}

		record := c.records[id]
		if matches(record, conditions) {
			matched = append(matched, record)
		}
	}

	sortRecords(matched, query.Get(constants.ParamOrder))

	return matched, nil
}

// view projects a stored record onto the requested fields and relations.
func (c *collection) view(record Record, query url.Values) Record {
	fields := splitList(query.Get(constants.ParamFields))
	related := splitList(query.Get(constants.ParamRelated))

	allFields := len(fields) == 0 || fields[0] == constants.AllSentinel
	allRelated := len(related) > 0 && related[0] == constants.AllSentinel

	keepField := make(map[string]bool, len(fields))
	for _, field := range fields {
		keepField[field] = true
	}

	keepRelation := make(map[string]bool, len(related))
	for _, rel := range related {
		keepRelation[rel] = true
	}

	out := make(Record, len(record))

	for key, value := range record {
		if c.relations[key] {
			if allRelated || keepRelation[key] {
				out[key] = value
			}

			continue
		}

		if allFields || keepField[key] {
			out[key] = value
		}
	}

	return out
}

// parseFilter understands conditions of the form field=value joined by "and".
func parseFilter(filter string) ([]condition, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}

	parts := strings.Split(filter, " and ")
	conditions := make([]condition, 0, len(parts))

	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), "()")

		field, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", errBadFilter, part)
		}

		conditions = append(conditions, condition{
			field: strings.TrimSpace(field),
			value: strings.Trim(strings.TrimSpace(value), `'"`),
		})
	}

	return conditions, nil
}

func matches(record Record, conditions []condition) bool {
	for _, cond := range conditions {
		value, ok := record[cond.field]
		if !ok || fmt.Sprint(value) != cond.value {
			return false
		}
	}

	return true
}

func sortRecords(records []Record, order string) {
	field, direction, _ := strings.Cut(strings.TrimSpace(order), " ")
	if field == "" {
		return
	}

	desc := strings.EqualFold(strings.TrimSpace(direction), "desc")

	sort.SliceStable(records, func(i, j int) bool {
		cmp := compare(records[i][field], records[j][field])
		if desc {
			return cmp > 0
		}

		return cmp < 0
	})
}

func compare(a, b any) int {
	af, aNum := number(a)
	bf, bNum := number(b)

	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

func paginate(records []Record, query url.Values) []Record {
	offset, _ := strconv.Atoi(query.Get(constants.ParamOffset))
	if offset < 0 {
		offset = 0
	}

	if offset > len(records) {
		offset = len(records)
	}

	records = records[offset:]

	limit, err := strconv.Atoi(query.Get(constants.ParamLimit))
	if err == nil && limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	return records
}

func parseIDs(raw string) ([]int, error) {
	parts := splitList(raw)
	ids := make([]int, 0, len(parts))

	for _, part := range parts {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()

		return int(i)
	case string:
		i, _ := strconv.Atoi(n)

		return i
	default:
		return 0
	}
}

// clone copies a record through JSON so nested values are not shared.
func clone(record Record) Record {
	data, _ := json.Marshal(record)

	var out Record

	_ = json.Unmarshal(data, &out)

	// Keep integer ids integral after the round trip.
	if id, ok := out["id"].(float64); ok {
		out["id"] = int(id)
	}

	return out
}
