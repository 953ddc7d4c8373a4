package literal

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/jseval/pkg/settings"
	"github.com/cockroachdb/apd/v3"
)

// DateLayout renders dates with seven fractional digits and a numeric UTC offset.
const DateLayout = "2006-01-02T15:04:05.0000000-07:00"

const null = "null"

// Format encodes value as a JavaScript literal.
func Format(value any, s settings.Settings) string {
	switch v := value.(type) {
	case nil:
		return null
	case Literal:
		return v.Value
	case *Literal:
		if v == nil {
			return null
		}
		return v.Value
	case Inline:
		if isNil(reflect.ValueOf(v)) {
			return null
		}
		return v.InlineScript()
	case Serializable:
		return Serialize(v.Value, s)
	case string:
		return Quote(v)
	case time.Time:
		return `new Date("` + v.Format(DateLayout) + `")`
	case *apd.Decimal:
		if v == nil {
			return null
		}
		return decimalText(v)
	case apd.Decimal:
		return decimalText(&v)
	case float64:
		return formatFloat(v, 64)
	case float32:
		return formatFloat(float64(v), 32)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	}

	rv := reflect.ValueOf(value)
	if isAnonymousStruct(rv.Type()) || s.IsSerializable(rv.Type()) {
		return Serialize(value, s)
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return null
		}
		return Format(rv.Elem().Interface(), s)
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return null
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return formatFloat(rv.Float(), 32)
	case reflect.Float64:
		return formatFloat(rv.Float(), 64)
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.String:
		if _, ok := value.(fmt.Stringer); !ok {
			return Quote(rv.String())
		}
	}

	return fmt.Sprint(value)
}

// Quote delimits s as a JavaScript string. Text spanning lines becomes a template literal.
// Double quotes are always written as the \u0022 escape; nothing else is escaped.
func Quote(s string) string {
	delim := `"`
	if strings.ContainsAny(s, "\r\n") {
		delim = "`"
	}
	return delim + strings.ReplaceAll(s, `"`, `\u0022`) + delim
}

// formatFloat keeps the shortest text that round-trips, switching to exponent
// notation where JavaScript's Number#toString would.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, bits)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

func decimalText(d *apd.Decimal) string {
	text := d.Text('f')
	if strings.Contains(text, ".") {
		text = strings.TrimRight(text, "0")
		text = strings.TrimSuffix(text, ".")
	}
	return text
}

func isAnonymousStruct(t reflect.Type) bool {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct && t.Name() == ""
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
