package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hujiyo/Mhuixs-sub001/internal/buf"
)

// Type is a field type, identified by its one-character tag.
type Type byte

// Field types.
const (
	I8   Type = 'a'
	I16  Type = 'b'
	I32  Type = 'c'
	I64  Type = 'd'
	U8   Type = 'e'
	U16  Type = 'f'
	U32  Type = 'g'
	U64  Type = 'h'
	F32  Type = 'i'
	F64  Type = 'j'
	Text Type = 'k'
	Date Type = 'l'
	Time Type = 'm'
)

var typeNames = map[Type]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	F32: "f32", F64: "f64", Text: "text", Date: "date", Time: "time",
}

// typeAliases are extra names accepted by ParseType.
var typeAliases = map[string]Type{
	"int": I32, "long": I64, "float": F32, "double": F64, "str": Text, "string": Text,
}

// Size returns the number of row bytes a field of type t occupies.
func (t Type) Size() int {
	switch t {
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32, Text, Date:
		return 4
	case Time:
		return 3
	case I64, U64, F64:
		return 8
	}
	return 0
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool { return t.Size() != 0 }

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%q)", byte(t))
}

// ParseType accepts a one-character tag ("c"), a type name ("i32") or a
// common alias ("int").
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && Type(s[0]).Valid() {
		return Type(s[0]), nil
	}
	for t, n := range typeNames {
		if n == s {
			return t, nil
		}
	}
	if t, ok := typeAliases[s]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadType, s)
}

// Key is the key kind of a field.
type Key uint8

// Key kinds.
const (
	KeyNone Key = iota
	KeyPrimary
	KeyForeign
	KeyUnique
	KeyIndex
)

var keyNames = [...]string{"none", "primary", "foreign", "unique", "index"}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// ParseKey parses a key kind name. The empty string is KeyNone.
func ParseKey(s string) (Key, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return KeyNone, nil
	case "pk":
		return KeyPrimary, nil
	case "fk":
		return KeyForeign, nil
	}
	for i, n := range keyNames {
		if n == s {
			return Key(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadKey, s)
}

// Field describes one column.
type Field struct {
	Name string
	Type Type
	Key  Key
}

// DateValue is a calendar date stored as year u16, month u8, day u8.
type DateValue struct {
	Year  uint16
	Month uint8
	Day   uint8
}

func (d DateValue) String() string {
	return fmt.Sprintf("%d.%02d.%02d", d.Year, d.Month, d.Day)
}

// ParseDate parses a literal of the form 2024.10.23.
func ParseDate(s string) (DateValue, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return DateValue{}, fmt.Errorf("%w: date %q", ErrBadLiteral, s)
	}
	y, err1 := strconv.ParseUint(parts[0], 10, 16)
	m, err2 := strconv.ParseUint(parts[1], 10, 8)
	d, err3 := strconv.ParseUint(parts[2], 10, 8)
	if err1 != nil || err2 != nil || err3 != nil || m < 1 || m > 12 || d < 1 || d > 31 {
		return DateValue{}, fmt.Errorf("%w: date %q", ErrBadLiteral, s)
	}
	return DateValue{Year: uint16(y), Month: uint8(m), Day: uint8(d)}, nil
}

// TimeValue is a time of day stored as hour, minute, second bytes.
type TimeValue struct {
	Hour   uint8
	Minute uint8
	Second uint8
}

func (t TimeValue) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// ParseTime parses a literal of the form 17:56:45.
func ParseTime(s string) (TimeValue, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return TimeValue{}, fmt.Errorf("%w: time %q", ErrBadLiteral, s)
	}
	h, err1 := strconv.ParseUint(parts[0], 10, 8)
	m, err2 := strconv.ParseUint(parts[1], 10, 8)
	sec, err3 := strconv.ParseUint(parts[2], 10, 8)
	if err1 != nil || err2 != nil || err3 != nil || h > 23 || m > 59 || sec > 59 {
		return TimeValue{}, fmt.Errorf("%w: time %q", ErrBadLiteral, s)
	}
	return TimeValue{Hour: uint8(h), Minute: uint8(m), Second: uint8(sec)}, nil
}

func putUint(dst []byte, v uint64) {
	switch len(dst) {
	case 1:
		dst[0] = byte(v)
	case 2:
		buf.PutU16LE(dst, uint16(v))
	case 4:
		buf.PutU32LE(dst, uint32(v))
	case 8:
		buf.PutU64LE(dst, v)
	}
}

func getUint(src []byte) uint64 {
	switch len(src) {
	case 1:
		return uint64(src[0])
	case 2:
		return uint64(buf.U16LE(src))
	case 4:
		return uint64(buf.U32LE(src))
	case 8:
		return buf.U64LE(src)
	}
	return 0
}

// encode parses lit into dst, which must be typ.Size() bytes. Text is
// handled by the table because it needs the arena.
func encode(typ Type, lit string, dst []byte) error {
	lit = strings.TrimSpace(lit)
	if lit == "" {
		clear(dst)
		return nil
	}
	bad := func() error { return fmt.Errorf("%w: %q as %s", ErrBadLiteral, lit, typ) }

	switch typ {
	case I8, I16, I32, I64:
		v, err := strconv.ParseInt(lit, 10, typ.Size()*8)
		if err != nil {
			return bad()
		}
		putUint(dst, uint64(v))
	case U8, U16, U32, U64:
		v, err := strconv.ParseUint(lit, 10, typ.Size()*8)
		if err != nil {
			return bad()
		}
		putUint(dst, v)
	case F32:
		f, err := strconv.ParseFloat(lit, 32)
		if err != nil {
			return bad()
		}
		buf.PutU32LE(dst, math.Float32bits(float32(f)))
	case F64:
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return bad()
		}
		buf.PutU64LE(dst, math.Float64bits(f))
	case Date:
		d, err := ParseDate(lit)
		if err != nil {
			return err
		}
		buf.PutU16LE(dst, d.Year)
		dst[2], dst[3] = d.Month, d.Day
	case Time:
		t, err := ParseTime(lit)
		if err != nil {
			return err
		}
		dst[0], dst[1], dst[2] = t.Hour, t.Minute, t.Second
	default:
		return fmt.Errorf("%w: %s", ErrBadType, typ)
	}
	return nil
}

// decode returns the typed value stored in src for every type but Text.
func decode(typ Type, src []byte) any {
	switch typ {
	case I8:
		return int8(src[0])
	case I16:
		return int16(buf.U16LE(src))
	case I32:
		return int32(buf.U32LE(src))
	case I64:
		return int64(buf.U64LE(src))
	case U8:
		return src[0]
	case U16:
		return buf.U16LE(src)
	case U32:
		return buf.U32LE(src)
	case U64:
		return buf.U64LE(src)
	case F32:
		return math.Float32frombits(buf.U32LE(src))
	case F64:
		return math.Float64frombits(buf.U64LE(src))
	case Date:
		return DateValue{Year: buf.U16LE(src), Month: src[2], Day: src[3]}
	case Time:
		return TimeValue{Hour: src[0], Minute: src[1], Second: src[2]}
	}
	return nil
}

// format renders a decoded value as a literal that encode accepts.
func format(v any) string {
	switch x := v.(type) {
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case DateValue:
		if x == (DateValue{}) {
			return ""
		}
		return x.String()
	case TimeValue:
		if x == (TimeValue{}) {
			return ""
		}
		return x.String()
	case string:
		return x
	}
	return fmt.Sprint(v)
}
