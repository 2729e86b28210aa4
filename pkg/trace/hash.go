package trace

import (
	"encoding/binary"
	"hash"
	"reflect"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// StateHash hashes the exported state reachable from v. Listeners that
// change an event's exported fields change its StateHash. Fields tagged
// `hash:"-"` or `hash:"ignore"` are skipped.
func StateHash(v interface{}) ([]byte, error) {
	h, _ := blake2b.New256(nil)

	err := hashVal(reflect.ValueOf(v), h)
	if err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

func hashVal(v reflect.Value, h hash.Hash) error {
	// Pointers and interfaces can be nested, strip all of them.
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v = reflect.Value{}
			break
		}
		v = v.Elem()
	}

	// nil hashes like a zero
	if !v.IsValid() {
		v = reflect.ValueOf(int64(0))
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return binary.Write(h, binary.LittleEndian, v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return binary.Write(h, binary.LittleEndian, v.Uint())
	case reflect.Float32, reflect.Float64:
		return binary.Write(h, binary.LittleEndian, v.Float())
	case reflect.Bool:
		var b int8
		if v.Bool() {
			b = 1
		}
		return binary.Write(h, binary.LittleEndian, b)
	case reflect.String:
		return hashString(h, v.String())
	case reflect.Array, reflect.Slice:
		l := v.Len()
		if err := binary.Write(h, binary.LittleEndian, int64(l)); err != nil {
			return err
		}

		for i := 0; i < l; i++ {
			if err := hashVal(v.Index(i), h); err != nil {
				return err
			}
		}
	case reflect.Map:
		// XOR the per entry hashes so the result does not depend on
		// iteration order.
		agg := make([]byte, blake2b.Size256)

		for _, k := range v.MapKeys() {
			eh, _ := blake2b.New256(nil)

			if err := hashVal(k, eh); err != nil {
				return err
			}

			if err := hashVal(v.MapIndex(k), eh); err != nil {
				return err
			}

			for i, x := range eh.Sum(nil) {
				agg[i] ^= x
			}
		}

		h.Write(agg)
	case reflect.Struct:
		t := v.Type()
		if err := hashString(h, t.Name()); err != nil {
			return err
		}

		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if field.PkgPath != "" {
				continue
			}

			tag := field.Tag.Get("hash")
			if tag == "ignore" || tag == "-" {
				continue
			}

			if err := hashString(h, field.Name); err != nil {
				return err
			}

			if err := hashVal(v.Field(i), h); err != nil {
				return err
			}
		}
	default:
		return errors.Errorf("unknown kind to hash: %s", v.Kind())
	}

	return nil
}

func hashString(h hash.Hash, s string) error {
	if err := binary.Write(h, binary.LittleEndian, int64(len(s))); err != nil {
		return err
	}

	_, err := h.Write([]byte(s))
	return err
}
