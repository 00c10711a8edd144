package kvstore

import (
	"fmt"
	"strings"

	"github.com/hujiyo/Mhuixs-sub001/engine/bitvec"
	"github.com/hujiyo/Mhuixs-sub001/engine/list"
	"github.com/hujiyo/Mhuixs-sub001/engine/stream"
	"github.com/hujiyo/Mhuixs-sub001/engine/table"
)

// Type is the payload kind of a key.
type Type uint8

// Key types.
const (
	TypeStream Type = iota + 1
	TypeList
	TypeBitVec
	TypeTable
	TypeStore
)

var typeNames = map[Type]string{
	TypeStream: "stream",
	TypeList:   "list",
	TypeBitVec: "bitvec",
	TypeTable:  "table",
	TypeStore:  "store",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType parses a key type name. "text" and "bitmap" are accepted as
// aliases for stream and bitvec.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "text":
		return TypeStream, nil
	case "bitmap":
		return TypeBitVec, nil
	case "kv":
		return TypeStore, nil
	}
	for t, n := range typeNames {
		if n == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadType, s)
}

// typeOf reports the key type of a payload value.
func typeOf(payload any) (Type, bool) {
	switch payload.(type) {
	case *stream.Stream:
		return TypeStream, true
	case *list.List:
		return TypeList, true
	case *bitvec.Vector:
		return TypeBitVec, true
	case *table.Table:
		return TypeTable, true
	case *Store:
		return TypeStore, true
	}
	return 0, false
}

// Link is a weighted edge from one key to another. Links are stored, not
// traversed.
type Link struct {
	Target string
	Coef   float64
}

// Entry is a detached view of a key. Payload is shared with the store.
type Entry struct {
	Name    string
	Type    Type
	Payload any
	Links   []Link
}
