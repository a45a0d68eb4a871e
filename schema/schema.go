/*
Schema describes the fixed-width layout of a tuple and packs/unpacks typed
records to and from that layout.

The storage layer treats tuples as opaque fixed-size byte strings; schema is
the collaborator that gives those bytes meaning. Only fixed-width field
kinds exist — an int is 8 bytes little-endian, a float is 8 bytes of
IEEE-754 bits, a char(n) is exactly n bytes zero-padded — so a record's
packed size is the same for every record of the schema, which is what lets
pages address tuples by index alone.
*/
package schema

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Kind is a field's type
type Kind int

const (
	// KindInt is a 64-bit signed integer, 8 bytes little-endian
	KindInt Kind = iota
	// KindFloat is a 64-bit float, 8 bytes of IEEE-754 bits little-endian
	KindFloat
	// KindChar is a fixed-length string of Len bytes, zero-padded
	KindChar
)

// Field is one column of a schema
type Field struct {
	Name string
	Kind Kind
	// Len is the byte length of a KindChar field, unused otherwise
	Len int
}

// IntField returns an int column
func IntField(name string) Field {
	return Field{Name: name, Kind: KindInt}
}

// FloatField returns a float column
func FloatField(name string) Field {
	return Field{Name: name, Kind: KindFloat}
}

// CharField returns a char(n) column
func CharField(name string, n int) Field {
	return Field{Name: name, Kind: KindChar, Len: n}
}

// size returns the field's packed byte width
func (f Field) size() int {
	if f.Kind == KindChar {
		return f.Len
	}
	return 8
}

// Schema is an ordered list of fields with a fixed packed size
type Schema struct {
	name   string
	fields []Field
	size   int
}

// New initializes a schema
func New(name string, fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, errors.New("no fields provided to schema constructor")
	}
	size := 0
	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.New("schema field with empty name")
		}
		if f.Kind == KindChar && f.Len <= 0 {
			return nil, errors.Errorf("char field %q with non-positive length %d", f.Name, f.Len)
		}
		size += f.size()
	}
	return &Schema{name: name, fields: fields, size: size}, nil
}

// Name returns the schema's name
func (s *Schema) Name() string {
	return s.name
}

// Fields returns the schema's fields in declaration order
func (s *Schema) Fields() []Field {
	return s.fields
}

// Size returns the packed byte width of one record.
// Every page holding this schema's tuples uses this as its tuple size.
func (s *Schema) Size() int {
	return s.size
}

// Pack encodes one value per field into the schema's fixed-width layout.
// Ints accept int or int64, floats accept float64, chars accept strings no
// longer than the field length.
func (s *Schema) Pack(values ...interface{}) ([]byte, error) {
	if len(values) != len(s.fields) {
		return nil, errors.Errorf("got %d values for %d fields", len(values), len(s.fields))
	}
	packed := make([]byte, 0, s.size)
	for i, f := range s.fields {
		switch f.Kind {
		case KindInt:
			var n int64
			switch v := values[i].(type) {
			case int64:
				n = v
			case int:
				n = int64(v)
			default:
				return nil, errors.Errorf("field %q wants an int, got %T", f.Name, values[i])
			}
			packed = binary.LittleEndian.AppendUint64(packed, uint64(n))
		case KindFloat:
			v, ok := values[i].(float64)
			if !ok {
				return nil, errors.Errorf("field %q wants a float64, got %T", f.Name, values[i])
			}
			packed = binary.LittleEndian.AppendUint64(packed, math.Float64bits(v))
		case KindChar:
			v, ok := values[i].(string)
			if !ok {
				return nil, errors.Errorf("field %q wants a string, got %T", f.Name, values[i])
			}
			if len(v) > f.Len {
				return nil, errors.Errorf("field %q of %d bytes overflows char(%d)", f.Name, len(v), f.Len)
			}
			padded := make([]byte, f.Len)
			copy(padded, v)
			packed = append(packed, padded...)
		}
	}
	return packed, nil
}

// Unpack decodes a packed record back into one value per field
func (s *Schema) Unpack(data []byte) ([]interface{}, error) {
	if len(data) != s.size {
		return nil, errors.Errorf("record of %d bytes does not match schema size %d", len(data), s.size)
	}
	values := make([]interface{}, 0, len(s.fields))
	off := 0
	for _, f := range s.fields {
		switch f.Kind {
		case KindInt:
			values = append(values, int64(binary.LittleEndian.Uint64(data[off:])))
		case KindFloat:
			values = append(values, math.Float64frombits(binary.LittleEndian.Uint64(data[off:])))
		case KindChar:
			raw := data[off : off+f.Len]
			if i := bytes.IndexByte(raw, 0); i >= 0 {
				raw = raw[:i]
			}
			values = append(values, string(raw))
		}
		off += f.size()
	}
	return values, nil
}
