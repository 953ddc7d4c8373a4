/*
Package literal encodes Go values as JavaScript literal text.

Format is a pure function of the value and the settings. Strings are double quoted (or
template literals when they span lines), dates become Date constructions, nested
expressions are inlined, and anonymous structs or allow-listed types are written as
object literals honoring the configured property naming.

Two numeric kinds are deliberately kept apart: float64 arithmetic renders with full
IEEE-754 precision while apd decimals render their exact short form.

	a, b, c := 0.1, 0.2, 0.5
	literal.Format(a+b*c/c, s) // 0.30000000000000004
*/
package literal
