package literal

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/jseval/pkg/settings"
	"github.com/cockroachdb/apd/v3"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// maxDepth bounds projection of self-referencing values.
const maxDepth = 64

// raw is emitted into the output without any encoding.
type raw string

var (
	timeType      = reflect.TypeOf(time.Time{})
	marshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
)

// Serialize writes v as an object literal using the serialization options of s.
func Serialize(v any, s settings.Settings) string {
	p := projector{opts: s.Serialization}
	var b strings.Builder
	write(&b, p.project(reflect.ValueOf(v), 0))
	return b.String()
}

type projector struct {
	opts settings.Serialization
}

// project converts v into a tree of nil, raw, string, bool, []any and ordered maps.
func (p projector) project(v reflect.Value, depth int) any {
	if !v.IsValid() || depth > maxDepth {
		return nil
	}

	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case Literal:
			return raw(x.Value)
		case Serializable:
			return p.project(reflect.ValueOf(x.Value), depth+1)
		case time.Time:
			return isoTime(x)
		case apd.Decimal:
			return raw(decimalText(&x))
		case *apd.Decimal:
			if x == nil {
				return nil
			}
			return raw(decimalText(x))
		case Inline:
			if isNil(v) {
				return nil
			}
			return raw(x.InlineScript())
		}
		if v.Type().Implements(marshalerType) && v.Type() != timeType && !isNil(v) {
			data, err := v.Interface().(json.Marshaler).MarshalJSON()
			if err != nil {
				return nil
			}
			return raw(data)
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return p.project(v.Elem(), depth+1)
	case reflect.Struct:
		obj := orderedmap.New[string, any]()
		p.fields(obj, v, depth)
		return obj
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		return p.mapping(v, depth)
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(v.Bytes())
		}
		fallthrough
	case reflect.Array:
		items := make([]any, v.Len())
		for i := range items {
			items[i] = p.project(v.Index(i), depth+1)
		}
		return items
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return raw(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return raw(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		bits := 64
		if v.Kind() == reflect.Float32 {
			bits = 32
		}
		return raw(formatFloat(f, bits))
	}
	return nil
}

func (p projector) fields(obj *orderedmap.OrderedMap[string, any], v reflect.Value, depth int) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() && !f.Anonymous {
			continue
		}

		name, omitEmpty, skip := parseTag(f.Tag.Get("json"))
		if skip {
			continue
		}
		fv := v.Field(i)

		if f.Anonymous && name == "" {
			inner := fv
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct && inner.Type() != timeType {
				p.fields(obj, inner, depth+1)
				continue
			}
			if !f.IsExported() {
				continue
			}
		}

		if omitEmpty && fv.IsZero() {
			continue
		}
		node := p.project(fv, depth+1)
		if node == nil && p.opts.OmitNulls {
			continue
		}
		if name == "" {
			name = p.opts.PropertyNaming.Apply(f.Name)
		}
		obj.Set(name, node)
	}
}

func (p projector) mapping(v reflect.Value, depth int) any {
	keys := make([]string, 0, v.Len())
	values := make(map[string]reflect.Value, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		var key string
		switch k.Kind() {
		case reflect.String:
			key = k.String()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			key = strconv.FormatInt(k.Int(), 10)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			key = strconv.FormatUint(k.Uint(), 10)
		default:
			continue
		}
		keys = append(keys, key)
		values[key] = iter.Value()
	}
	sort.Strings(keys)

	obj := orderedmap.New[string, any]()
	for _, key := range keys {
		node := p.project(values[key], depth+1)
		if node == nil && p.opts.OmitNulls {
			continue
		}
		obj.Set(key, node)
	}
	return obj
}

func parseTag(tag string) (name string, omitEmpty, skip bool) {
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// isoTime writes UTC values without an offset, as in 2001-01-01T00:00:00.
func isoTime(t time.Time) string {
	if t.Location() == time.UTC {
		return t.Format("2006-01-02T15:04:05.9999999")
	}
	return t.Format("2006-01-02T15:04:05.9999999Z07:00")
}

func write(b *strings.Builder, node any) {
	switch n := node.(type) {
	case nil:
		b.WriteString(null)
	case raw:
		b.WriteString(string(n))
	case string:
		writeString(b, n)
	case bool:
		b.WriteString(strconv.FormatBool(n))
	case []any:
		b.WriteByte('[')
		for i, item := range n {
			if i > 0 {
				b.WriteByte(',')
			}
			write(b, item)
		}
		b.WriteByte(']')
	case *orderedmap.OrderedMap[string, any]:
		b.WriteByte('{')
		first := true
		for pair := n.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				b.WriteByte(',')
			}
			first = false
			writeString(b, pair.Key)
			b.WriteByte(':')
			write(b, pair.Value)
		}
		b.WriteByte('}')
	}
}

func writeString(b *strings.Builder, s string) {
	data, _ := json.Marshal(s)
	b.Write(data)
}
