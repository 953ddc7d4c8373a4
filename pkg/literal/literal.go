package literal

// Literal is a pre-formatted JavaScript fragment. The formatter emits Value verbatim,
// both as a top-level value and inside serialized objects.
type Literal struct {
	Value string
}

// Raw wraps a JavaScript fragment so that it bypasses every encoding rule.
func Raw(js string) Literal {
	return Literal{Value: js}
}

// String returns the raw fragment.
func (l Literal) String() string {
	return l.Value
}

// Inline is implemented by values that render their own JavaScript, such as a nested
// recorder. Their text is inlined without quoting.
type Inline interface {
	InlineScript() string
}

// Serializable marks a value for structured serialization regardless of its type.
type Serializable struct {
	Value any
}

// Object marks v to be written as an object literal.
func Object(v any) Serializable {
	return Serializable{Value: v}
}
