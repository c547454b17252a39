package dfapi

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

// Cardinality says whether a relation expands to one record or a list.
type Cardinality int

const (
	// ToOne relations decode into a pointer, nil when absent or null.
	ToOne Cardinality = iota
	// ToMany relations decode into a slice, nil when absent.
	ToMany
)

// String implements fmt.Stringer.
func (c Cardinality) String() string {
	if c == ToMany {
		return "to-many"
	}

	return "to-one"
}

// Relation links a field of a record to the related resource the server can
// expand into it.
type Relation struct {
	// Name is the Go field name on the record, e.g. "UserCreated".
	Name string
	// Key is the wire key used in the related parameter and the response.
	Key         string
	Cardinality Cardinality
}

// One declares a to-one relation.
func One(name, key string) Relation {
	return Relation{Name: name, Key: key, Cardinality: ToOne}
}

// Many declares a to-many relation.
func Many(name, key string) Relation {
	return Relation{Name: name, Key: key, Cardinality: ToMany}
}

// Envelope is the batch container used by every collection endpoint.
type Envelope[T any] struct {
	Record []T `json:"record"`
}

// Codec knows how one record kind is named, addressed and serialized.
type Codec[T any] struct {
	Kind      string
	Path      string
	Relations []Relation

	once   sync.Once
	fields map[string]string
}

// NewCodec declares a record kind served at /rest/system/{path}.
func NewCodec[T any](kind, path string, relations ...Relation) *Codec[T] {
	return &Codec[T]{
		Kind:      kind,
		Path:      path,
		Relations: relations,
	}
}

// Endpoint returns the collection path.
func (c *Codec[T]) Endpoint() string {
	return constants.SystemPrefix + "/" + c.Path
}

// RecordEndpoint returns the path of a single record.
func (c *Codec[T]) RecordEndpoint(id int) string {
	return fmt.Sprintf("%s/%d", c.Endpoint(), id)
}

// EncodeBatch wraps records in the collection envelope. A single record is
// still sent as a one-element collection.
func (c *Codec[T]) EncodeBatch(records []T) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("encoding %s batch: %w", c.Kind, ErrEmptyBatch)
	}

	data, err := json.Marshal(Envelope[T]{Record: records})
	if err != nil {
		return nil, fmt.Errorf("encoding %s batch: %w", c.Kind, err)
	}

	return data, nil
}

// DecodeBatch reads a response body. A "record" array is decoded as is; a
// bare object is treated as a single record. Anything else is malformed.
func (c *Codec[T]) DecodeBatch(body []byte) ([]T, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decoding %s response: %w: invalid JSON", c.Kind, ErrMalformedEnvelope)
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("decoding %s response: %w: expected an object", c.Kind, ErrMalformedEnvelope)
	}

	container := root.Get(constants.RecordKey)
	if container.Exists() {
		switch {
		case container.Type == gjson.Null:
			return []T{}, nil
		case !container.IsArray():
			return nil, fmt.Errorf("decoding %s response: %w: %q is not an array",
				c.Kind, ErrMalformedEnvelope, constants.RecordKey)
		}

		records := make([]T, 0, len(container.Array()))

		err := json.Unmarshal([]byte(container.Raw), &records)
		if err != nil {
			return nil, fmt.Errorf("decoding %s records: %w", c.Kind, err)
		}

		return records, nil
	}

	var record T

	err := json.Unmarshal([]byte(root.Raw), &record)
	if err != nil {
		return nil, fmt.Errorf("decoding %s record: %w", c.Kind, err)
	}

	return []T{record}, nil
}

// DecodeRecord decodes a response that must hold exactly one record.
func (c *Codec[T]) DecodeRecord(body []byte) (*T, error) {
	records, err := c.DecodeBatch(body)
	if err != nil {
		return nil, err
	}

	if len(records) != 1 {
		return nil, fmt.Errorf("decoding %s: %w, got %d", c.Kind, ErrUnexpectedRecordCount, len(records))
	}

	return &records[0], nil
}

// WireField translates a Go field name into its wire name.
func (c *Codec[T]) WireField(name string) (string, bool) {
	c.once.Do(c.buildFields)

	wire, ok := c.fields[name]

	return wire, ok
}

// WireFields translates Go field names for use in Query.Fields.
func (c *Codec[T]) WireFields(names ...string) ([]string, error) {
	wire := make([]string, 0, len(names))

	for _, name := range names {
		key, ok := c.WireField(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, c.Kind, name)
		}

		wire = append(wire, key)
	}

	return wire, nil
}

// Relation looks up a relation by Go field name or wire key.
func (c *Codec[T]) Relation(name string) (Relation, bool) {
	for _, rel := range c.Relations {
		if rel.Name == name || rel.Key == name {
			return rel, true
		}
	}

	return Relation{}, false
}

// RelatedKeys translates relation names for use in Query.Related.
func (c *Codec[T]) RelatedKeys(names ...string) ([]string, error) {
	keys := make([]string, 0, len(names))

	for _, name := range names {
		rel, ok := c.Relation(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no relation %q", ErrUnknownRelation, c.Kind, name)
		}

		keys = append(keys, rel.Key)
	}

	return keys, nil
}

func (c *Codec[T]) buildFields() {
	c.fields = make(map[string]string)
	collectFields(reflect.TypeFor[T](), c.fields)
}

func collectFields(typ reflect.Type, fields map[string]string) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return
	}

	for i := range typ.NumField() {
		field := typ.Field(i)

		tag := field.Tag.Get("json")
		if field.Anonymous && tag == "" {
			collectFields(field.Type, fields)

			continue
		}

		if !field.IsExported() || tag == "-" {
			continue
		}

		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}

		fields[field.Name] = name
	}
}

// Pair is one request record matched with the record the server returned
// for it.
type Pair[T any] struct {
	Request  T
	Response T
}

// Zip pairs request and response records by position.
func Zip[T any](requests, responses []T) ([]Pair[T], error) {
	if len(requests) != len(responses) {
		return nil, fmt.Errorf("%w: sent %d, received %d", ErrBatchSizeMismatch, len(requests), len(responses))
	}

	pairs := make([]Pair[T], len(requests))
	for i := range requests {
		pairs[i] = Pair[T]{Request: requests[i], Response: responses[i]}
	}

	return pairs, nil
}
