package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// ValueType represents the type of a property value
type ValueType uint8

const (
	TypeString ValueType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeBytes
	TypeTimestamp
	TypeStringList // Ordered sequence of strings (synonyms, alternative names)
)

// String returns the name of the value type
func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeBytes:
		return "bytes"
	case TypeTimestamp:
		return "timestamp"
	case TypeStringList:
		return "string_list"
	default:
		return fmt.Sprintf("ValueType(%d)", uint8(t))
	}
}

// Value represents a typed property value
type Value struct {
	Type ValueType
	Data []byte
}

// Helper functions to create typed values
func StringValue(s string) Value {
	return Value{Type: TypeString, Data: []byte(s)}
}

func IntValue(i int64) Value {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, uint64(i))
	return Value{Type: TypeInt, Data: data}
}

func FloatValue(f float64) Value {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, math.Float64bits(f))
	return Value{Type: TypeFloat, Data: data}
}

func BoolValue(b bool) Value {
	data := []byte{0}
	if b {
		data[0] = 1
	}
	return Value{Type: TypeBool, Data: data}
}

func BytesValue(b []byte) Value {
	return Value{Type: TypeBytes, Data: b}
}

func TimestampValue(t time.Time) Value {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, uint64(t.Unix()))
	return Value{Type: TypeTimestamp, Data: data}
}

// StringListValue encodes as: [4 bytes count] then per element [4 bytes length][bytes]
func StringListValue(list []string) Value {
	size := 4
	for _, s := range list {
		size += 4 + len(s)
	}
	data := make([]byte, size)
	binary.LittleEndian.PutUint32(data[0:4], uint32(len(list)))
	off := 4
	for _, s := range list {
		binary.LittleEndian.PutUint32(data[off:off+4], uint32(len(s)))
		off += 4
		off += copy(data[off:], s)
	}
	return Value{Type: TypeStringList, Data: data}
}

// Decode methods
func (v Value) AsString() (string, error) {
	if v.Type != TypeString {
		return "", fmt.Errorf("value is not a string")
	}
	return string(v.Data), nil
}

func (v Value) AsInt() (int64, error) {
	if v.Type != TypeInt {
		return 0, fmt.Errorf("value is not an int")
	}
	return int64(binary.LittleEndian.Uint64(v.Data)), nil
}

func (v Value) AsFloat() (float64, error) {
	if v.Type != TypeFloat {
		return 0, fmt.Errorf("value is not a float")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.Data)), nil
}

func (v Value) AsBool() (bool, error) {
	if v.Type != TypeBool {
		return false, fmt.Errorf("value is not a bool")
	}
	return v.Data[0] == 1, nil
}

func (v Value) AsTimestamp() (time.Time, error) {
	if v.Type != TypeTimestamp {
		return time.Time{}, fmt.Errorf("value is not a timestamp")
	}
	return time.Unix(int64(binary.LittleEndian.Uint64(v.Data)), 0), nil
}

func (v Value) AsStringList() ([]string, error) {
	if v.Type != TypeStringList {
		return nil, fmt.Errorf("value is not a string list")
	}
	if len(v.Data) < 4 {
		return nil, fmt.Errorf("invalid string list data: too short")
	}

	count := binary.LittleEndian.Uint32(v.Data[0:4])
	list := make([]string, 0, count)
	off := 4
	for i := uint32(0); i < count; i++ {
		if off+4 > len(v.Data) {
			return nil, fmt.Errorf("invalid string list data: truncated at element %d", i)
		}
		n := int(binary.LittleEndian.Uint32(v.Data[off : off+4]))
		off += 4
		if off+n > len(v.Data) {
			return nil, fmt.Errorf("invalid string list data: element %d overruns buffer", i)
		}
		list = append(list, string(v.Data[off:off+n]))
		off += n
	}
	if off != len(v.Data) {
		return nil, fmt.Errorf("invalid string list data: %d trailing bytes", len(v.Data)-off)
	}
	return list, nil
}

// Native decodes the value into a plain Go value: string, int64, float64, bool, []byte,
// time.Time or []string. Undecodable data yields nil.
func (v Value) Native() any {
	var (
		out any
		err error
	)
	switch v.Type {
	case TypeString:
		out, err = v.AsString()
	case TypeInt:
		out, err = v.AsInt()
	case TypeFloat:
		out, err = v.AsFloat()
	case TypeBool:
		out, err = v.AsBool()
	case TypeBytes:
		out = v.Data
	case TypeTimestamp:
		out, err = v.AsTimestamp()
	case TypeStringList:
		out, err = v.AsStringList()
	}
	if err != nil {
		return nil
	}
	return out
}

// ValueOf converts a plain Go value into a Value. Supported: string, bool, int, int64, float64,
// []string, []byte and time.Time.
func ValueOf(x any) (Value, error) {
	switch val := x.(type) {
	case string:
		return StringValue(val), nil
	case bool:
		return BoolValue(val), nil
	case int:
		return IntValue(int64(val)), nil
	case int64:
		return IntValue(val), nil
	case float64:
		return FloatValue(val), nil
	case []string:
		return StringListValue(val), nil
	case []byte:
		return BytesValue(val), nil
	case time.Time:
		return TimestampValue(val), nil
	case Value:
		return val, nil
	default:
		return Value{}, fmt.Errorf("unsupported property value type %T", x)
	}
}

// Node represents a vertex in the graph
type Node struct {
	ID         uint64
	Labels     []string
	Properties map[string]Value
	CreatedAt  int64
	UpdatedAt  int64
}

// Edge represents a relationship between nodes
type Edge struct {
	ID         uint64
	FromNodeID uint64
	ToNodeID   uint64
	Type       string
	Properties map[string]Value
	CreatedAt  int64
}

// Clone creates a deep copy of a node
func (n *Node) Clone() *Node {
	clone := &Node{
		ID:         n.ID,
		Labels:     make([]string, len(n.Labels)),
		Properties: make(map[string]Value, len(n.Properties)),
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
	copy(clone.Labels, n.Labels)
	for k, v := range n.Properties {
		clone.Properties[k] = v
	}
	return clone
}

// HasLabel checks if node has a specific label
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// GetProperty gets a property value
func (n *Node) GetProperty(key string) (Value, bool) {
	val, ok := n.Properties[key]
	return val, ok
}

// StringProperty returns a string property, or "" when absent or of another type
func (n *Node) StringProperty(key string) string {
	val, ok := n.Properties[key]
	if !ok {
		return ""
	}
	s, err := val.AsString()
	if err != nil {
		return ""
	}
	return s
}

// Clone creates a deep copy of an edge
func (e *Edge) Clone() *Edge {
	clone := &Edge{
		ID:         e.ID,
		FromNodeID: e.FromNodeID,
		ToNodeID:   e.ToNodeID,
		Type:       e.Type,
		Properties: make(map[string]Value, len(e.Properties)),
		CreatedAt:  e.CreatedAt,
	}
	for k, v := range e.Properties {
		clone.Properties[k] = v
	}
	return clone
}

// GetProperty gets a property value
func (e *Edge) GetProperty(key string) (Value, bool) {
	val, ok := e.Properties[key]
	return val, ok
}
