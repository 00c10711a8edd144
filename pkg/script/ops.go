package script

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hujiyo/Mhuixs-sub001/engine/bitvec"
	"github.com/hujiyo/Mhuixs-sub001/engine/kvstore"
	"github.com/hujiyo/Mhuixs-sub001/engine/table"
)

type opFunc func(r *Runner, st Step) (string, error)

var ops = map[string]opFunc{
	"kv.add":    kvAdd,
	"kv.find":   kvFind,
	"kv.remove": kvRemove,
	"kv.link":   kvLink,
	"kv.unlink": kvUnlink,

	"stream.set":    streamSet,
	"stream.append": streamAppend,
	"stream.get":    streamGet,

	"list.lpush": listPush(true),
	"list.rpush": listPush(false),
	"list.lpop":  listPop(true),
	"list.rpop":  listPop(false),
	"list.get":   listGet,
	"list.len":   listLen,

	"bitvec.set":      bitvecSet,
	"bitvec.setrange": bitvecSetRange,
	"bitvec.get":      bitvecGet,
	"bitvec.count":    bitvecCount,
	"bitvec.find":     bitvecFind,

	"table.addfield":    tableAddField,
	"table.removefield": tableRemoveField,
	"table.add":         tableAdd,
	"table.remove":      tableRemove,
	"table.get":         tableGet,
	"table.record":      tableRecord,
	"table.render":      tableRender,
}

func need(st Step, n int) error {
	if len(st.Args) < n {
		return fmt.Errorf("%w: %s needs %d args, got %d", ErrArgs, st.Op, n, len(st.Args))
	}
	return nil
}

func intArg(st Step, i int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(st.Args[i]))
	if err != nil {
		return 0, fmt.Errorf("%w: %s arg %d: %q is not an integer", ErrArgs, st.Op, i, st.Args[i])
	}
	return n, nil
}

func uintArg(st Step, i int) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(st.Args[i]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s arg %d: %q is not an offset", ErrArgs, st.Op, i, st.Args[i])
	}
	return n, nil
}

func boolArg(st Step, i int) (bool, error) {
	switch strings.TrimSpace(st.Args[i]) {
	case "1", "true", "on":
		return true, nil
	case "0", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("%w: %s arg %d: %q is not a bit", ErrArgs, st.Op, i, st.Args[i])
}

// ensure returns the payload of key, creating it with type t when missing.
func ensure[T any](r *Runner, key string, t kvstore.Type, get func(string) (T, error)) (T, error) {
	v, err := get(key)
	if errors.Is(err, kvstore.ErrNotFound) {
		if _, err := r.store.Add(key, t); err != nil {
			return v, err
		}
		return get(key)
	}
	return v, err
}

func kvAdd(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	t, err := kvstore.ParseType(st.Args[0])
	if err != nil {
		return "", err
	}
	_, err = r.store.Add(st.Key, t)
	return "", err
}

func kvFind(r *Runner, st Step) (string, error) {
	e, err := r.store.Find(st.Key)
	if err != nil {
		return "", err
	}
	return e.Type.String(), nil
}

func kvRemove(r *Runner, st Step) (string, error) {
	return "", r.store.Remove(st.Key)
}

func kvLink(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	coef := 1.0
	if len(st.Args) > 1 {
		f, err := strconv.ParseFloat(st.Args[1], 64)
		if err != nil {
			return "", fmt.Errorf("%w: coefficient %q", ErrArgs, st.Args[1])
		}
		coef = f
	}
	return "", r.store.Link(st.Key, st.Args[0], coef)
}

func kvUnlink(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	return "", r.store.Unlink(st.Key, st.Args[0])
}

func streamSet(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	s, err := ensure(r, st.Key, kvstore.TypeStream, r.store.Stream)
	if err != nil {
		return "", err
	}
	s.Set([]byte(st.Args[0]))
	return "", nil
}

func streamAppend(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	s, err := ensure(r, st.Key, kvstore.TypeStream, r.store.Stream)
	if err != nil {
		return "", err
	}
	return "", s.Append([]byte(st.Args[0]))
}

func streamGet(r *Runner, st Step) (string, error) {
	s, err := r.store.Stream(st.Key)
	if err != nil {
		return "", err
	}
	b, err := s.Bytes()
	return string(b), err
}

func listPush(head bool) opFunc {
	return func(r *Runner, st Step) (string, error) {
		if err := need(st, 1); err != nil {
			return "", err
		}
		l, err := ensure(r, st.Key, kvstore.TypeList, r.store.List)
		if err != nil {
			return "", err
		}
		push := l.RPush
		if head {
			push = l.LPush
		}
		for _, v := range st.Args {
			if err := push([]byte(v)); err != nil {
				return "", err
			}
		}
		return strconv.Itoa(l.Len()), nil
	}
}

func listPop(head bool) opFunc {
	return func(r *Runner, st Step) (string, error) {
		l, err := r.store.List(st.Key)
		if err != nil {
			return "", err
		}
		pop := l.RPop
		if head {
			pop = l.LPop
		}
		v, err := pop()
		return string(v), err
	}
}

func listGet(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	l, err := r.store.List(st.Key)
	if err != nil {
		return "", err
	}
	i, err := intArg(st, 0)
	if err != nil {
		return "", err
	}
	v, err := l.Get(i)
	return string(v), err
}

func listLen(r *Runner, st Step) (string, error) {
	l, err := r.store.List(st.Key)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(l.Len()), nil
}

func bitvecSet(r *Runner, st Step) (string, error) {
	if err := need(st, 2); err != nil {
		return "", err
	}
	o, err := uintArg(st, 0)
	if err != nil {
		return "", err
	}
	val, err := boolArg(st, 1)
	if err != nil {
		return "", err
	}
	v, err := ensure(r, st.Key, kvstore.TypeBitVec, r.store.BitVec)
	if err != nil {
		return "", err
	}
	return "", v.Set(o, val)
}

func bitvecSetRange(r *Runner, st Step) (string, error) {
	if err := need(st, 3); err != nil {
		return "", err
	}
	o, err := uintArg(st, 0)
	if err != nil {
		return "", err
	}
	n, err := uintArg(st, 1)
	if err != nil {
		return "", err
	}
	val, err := boolArg(st, 2)
	if err != nil {
		return "", err
	}
	v, err := ensure(r, st.Key, kvstore.TypeBitVec, r.store.BitVec)
	if err != nil {
		return "", err
	}
	return "", v.SetRange(o, n, val)
}

func bitvecGet(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	v, err := r.store.BitVec(st.Key)
	if err != nil {
		return "", err
	}
	o, err := uintArg(st, 0)
	if err != nil {
		return "", err
	}
	if v.Get(o) {
		return "1", nil
	}
	return "0", nil
}

// bitvecRange reads an inclusive [a, b] range from args i and i+1,
// defaulting to the whole vector.
func bitvecRange(st Step, v *bitvec.Vector, i int) (uint64, uint64, error) {
	if len(st.Args) < i+2 {
		if v.Len() == 0 {
			return 0, 0, bitvec.ErrRange
		}
		return 0, v.Len() - 1, nil
	}
	a, err := uintArg(st, i)
	if err != nil {
		return 0, 0, err
	}
	b, err := uintArg(st, i+1)
	return a, b, err
}

func bitvecCount(r *Runner, st Step) (string, error) {
	v, err := r.store.BitVec(st.Key)
	if err != nil {
		return "", err
	}
	a, b, err := bitvecRange(st, v, 0)
	if err != nil {
		return "", err
	}
	n, err := v.Count(a, b)
	return strconv.FormatUint(n, 10), err
}

func bitvecFind(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	v, err := r.store.BitVec(st.Key)
	if err != nil {
		return "", err
	}
	val, err := boolArg(st, 0)
	if err != nil {
		return "", err
	}
	a, b, err := bitvecRange(st, v, 1)
	if err != nil {
		return "", err
	}
	i, err := v.Find(val, a, b)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(i, 10), nil
}

func tableAddField(r *Runner, st Step) (string, error) {
	if err := need(st, 2); err != nil {
		return "", err
	}
	typ, err := table.ParseType(st.Args[1])
	if err != nil {
		return "", err
	}
	var key table.Key
	if len(st.Args) > 2 {
		if key, err = table.ParseKey(st.Args[2]); err != nil {
			return "", err
		}
	}
	t, err := ensure(r, st.Key, kvstore.TypeTable, r.store.Table)
	if err != nil {
		return "", err
	}
	return "", t.AddField(table.Field{Name: st.Args[0], Type: typ, Key: key})
}

// field resolves a field argument given by name or by position.
func field(t *table.Table, arg string) (int, error) {
	if i, err := t.FieldIndex(arg); err == nil {
		return i, nil
	}
	if i, err := strconv.Atoi(arg); err == nil && i >= 0 && i < t.FieldCount() {
		return i, nil
	}
	return 0, fmt.Errorf("%w: %q", table.ErrNoField, arg)
}

func tableRemoveField(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	t, err := r.store.Table(st.Key)
	if err != nil {
		return "", err
	}
	i, err := field(t, st.Args[0])
	if err != nil {
		return "", err
	}
	return "", t.RemoveField(i)
}

func tableAdd(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	t, err := r.store.Table(st.Key)
	if err != nil {
		return "", err
	}
	v, err := t.AddRecord(st.Args[0])
	if err != nil {
		return "", err
	}
	return strconv.Itoa(v), nil
}

func tableRemove(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	t, err := r.store.Table(st.Key)
	if err != nil {
		return "", err
	}
	j, err := intArg(st, 0)
	if err != nil {
		return "", err
	}
	return "", t.RemoveRecord(j)
}

func tableGet(r *Runner, st Step) (string, error) {
	if err := need(st, 2); err != nil {
		return "", err
	}
	t, err := r.store.Table(st.Key)
	if err != nil {
		return "", err
	}
	i, err := field(t, st.Args[0])
	if err != nil {
		return "", err
	}
	j, err := intArg(st, 1)
	if err != nil {
		return "", err
	}
	return t.Get(i, j)
}

func tableRecord(r *Runner, st Step) (string, error) {
	if err := need(st, 1); err != nil {
		return "", err
	}
	t, err := r.store.Table(st.Key)
	if err != nil {
		return "", err
	}
	j, err := intArg(st, 0)
	if err != nil {
		return "", err
	}
	rec, err := t.Record(j)
	if err != nil {
		return "", err
	}
	return strings.Join(rec, ","), nil
}

func tableRender(r *Runner, st Step) (string, error) {
	t, err := r.store.Table(st.Key)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	if err := t.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
