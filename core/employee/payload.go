package employee

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Object is a decoded JSON object that remembers the order of its keys.
type Object struct {
	Keys   []string
	Fields map[string]interface{}
}

func NewObject() *Object {
	return &Object{Fields: make(map[string]interface{})}
}

func (o *Object) Set(key string, val interface{}) {
	if _, ok := o.Fields[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Fields[key] = val
}

func (o *Object) Get(key string) (interface{}, bool) {
	val, ok := o.Fields[key]
	return val, ok
}

// OrderedKeys returns the enumeration order of the object keys:
// integer-like keys first in ascending numeric order, then the rest in insertion order.
func (o *Object) OrderedKeys() []string {
	return orderKeys(o.Keys)
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.Fields[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeJSON decodes a JSON document into plain values where objects become *Object,
// arrays []interface{} and numbers json.Number.
func DecodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	val, err := decodeValue(dec)
	if err != nil {
		return nil, errors.Wrap(err, "employee.DecodeJSON")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("employee.DecodeJSON: trailing data after document")
	}
	return val, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.Errorf("unexpected object key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := make([]interface{}, 0)
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, errors.Errorf("unexpected delimiter %v", t)
	default:
		return tok, nil
	}
}

// Lookup walks a dotted path (eg. "TABLE_DATA.data") through nested objects.
// An empty path returns val itself.
func Lookup(val interface{}, path string) (interface{}, bool) {
	if path == "" {
		return val, true
	}
	for _, part := range strings.Split(path, ".") {
		switch obj := val.(type) {
		case *Object:
			next, ok := obj.Get(part)
			if !ok {
				return nil, false
			}
			val = next
		case map[string]interface{}:
			next, ok := obj[part]
			if !ok {
				return nil, false
			}
			val = next
		default:
			return nil, false
		}
	}
	return val, true
}

func orderKeys(keys []string) []string {
	var numeric, other []string
	for _, k := range keys {
		if isIndexKey(k) {
			numeric = append(numeric, k)
		} else {
			other = append(other, k)
		}
	}
	sort.SliceStable(numeric, func(i, j int) bool {
		a, _ := strconv.ParseUint(numeric[i], 10, 32)
		b, _ := strconv.ParseUint(numeric[j], 10, 32)
		return a < b
	})
	return append(numeric, other...)
}

// isIndexKey reports whether k is a canonical non-negative integer ("0", "12", not "012").
func isIndexKey(k string) bool {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return false
	}
	_, err := strconv.ParseUint(k, 10, 32)
	return err == nil
}
