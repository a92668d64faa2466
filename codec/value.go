package codec

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	msgpack "github.com/ugorji/go/codec"
)

// Codec encodes values for the session table. It is safe for concurrent use.
type Codec struct {
	handle            *msgpack.MsgpackHandle
	legacyFalseAbsent bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithLegacyFalseAsAbsent makes a stored boolean false decode as absent, for
// readers that treat a false session value the same as a missing one. It only
// affects values written by this codec.
func WithLegacyFalseAsAbsent() Option {
	return func(c *Codec) { c.legacyFalseAbsent = true }
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	h := &msgpack.MsgpackHandle{}
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	h.RawToString = true
	h.WriteExt = true
	h.SignedInteger = true

	c := &Codec{handle: h}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode serializes v and percent-encodes the result.
// Values holding funcs, channels, unsafe pointers or complex numbers at any
// depth are rejected, since MessagePack has no representation for them.
func (c *Codec) Encode(v any) (string, error) {
	if err := checkEncodable(reflect.ValueOf(v), "value", map[uintptr]bool{}); err != nil {
		return "", err
	}
	var buf []byte
	if err := msgpack.NewEncoderBytes(&buf, c.handle).Encode(v); err != nil {
		return "", fmt.Errorf("encode value of type %T: %w", v, err)
	}
	return percentEncode(buf), nil
}

// Decode reverses Encode. It reports false for text that is not a complete
// encoded value, and never panics on malformed input.
func (c *Codec) Decode(text string) (value any, ok bool) {
	raw, err := url.PathUnescape(text)
	if err != nil || raw == "" {
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			value, ok = nil, false
		}
	}()

	data := []byte(raw)
	dec := msgpack.NewDecoderBytes(data, c.handle)
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, false
	}
	if dec.NumBytesRead() != len(data) {
		return nil, false
	}
	if b, isBool := out.(bool); isBool && !b && c.legacyFalseAbsent {
		return nil, false
	}
	return out, true
}

func checkEncodable(v reflect.Value, path string, seen map[uintptr]bool) error {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return fmt.Errorf("%s: cannot encode %s", path, v.Type())
	case reflect.Interface:
		return checkEncodable(v.Elem(), path, seen)
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		if seen[v.Pointer()] {
			return nil
		}
		seen[v.Pointer()] = true
		return checkEncodable(v.Elem(), path, seen)
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if seen[v.Pointer()] {
			return nil
		}
		seen[v.Pointer()] = true
		iter := v.MapRange()
		for iter.Next() {
			p := fmt.Sprintf("%s[%v]", path, iter.Key())
			if err := checkEncodable(iter.Key(), p, seen); err != nil {
				return err
			}
			if err := checkEncodable(iter.Value(), p, seen); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := checkEncodable(v.Index(i), fmt.Sprintf("%s[%d]", path, i), seen); err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("codec") == "-" {
				continue
			}
			if err := checkEncodable(v.Field(i), path+"."+f.Name, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// percentEncode escapes every byte outside A-Z a-z 0-9 - _ . ~ as %XX.
func percentEncode(b []byte) string {
	return strings.ReplaceAll(url.QueryEscape(string(b)), "+", "%20")
}
