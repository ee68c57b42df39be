// Package rules implements the small boolean expression grammar rules
// select files with, grounded on original_source/ai/rules/ast.rs: the
// same Field/ComparisonOp/FunctionName/Value shapes, translated from Rust
// enums into a Go sum type over structs implementing a marker interface —
// the same "closed, tagged variant of operations" spec.md §9 calls for in
// place of dynamic dispatch.
package rules

import (
	"fmt"
	"time"
)

// Expr is any node of the rule AST.
type Expr interface {
	isExpr()
}

// Or is left OR right, short-circuiting: right is not evaluated once left
// is true.
type Or struct{ Left, Right Expr }

// And is left AND right, short-circuiting: right is not evaluated once
// left is false.
type And struct{ Left, Right Expr }

// Not negates Inner. Applying Not to a non-boolean value is an evaluation
// error per spec.md §4.D.
type Not struct{ Inner Expr }

// Literal is a bare boolean literal used as a predicate.
type Literal struct{ Value bool }

// Comparison is `field op value`.
type Comparison struct {
	Field Field
	Op    Op
	Value Value
}

// FuncCall is `receiver.function(args...)`. Receiver is "file" for
// file-level functions or "file.<field>" for field-scoped ones (e.g.
// file.name.contains(...)); only vector_similarity is callable solely as
// file.vector_similarity(q), enforced at parse time.
type FuncCall struct {
	Receiver string
	Field    Field // valid when Receiver is a field chain; zero value otherwise
	HasField bool
	Function Function
	Args     []Value
}

// FuncComparison is `receiver.function(args) op value`, the shape
// vector_similarity is used in: `file.vector_similarity("invoices") > 0.8`.
type FuncComparison struct {
	Call  FuncCall
	Op    Op
	Value Value
}

func (Or) isExpr()             {}
func (And) isExpr()            {}
func (Not) isExpr()            {}
func (Literal) isExpr()        {}
func (Comparison) isExpr()     {}
func (FuncCall) isExpr()       {}
func (FuncComparison) isExpr() {}

// Field enumerates the recognized VirtualFile fields, canonical names per
// spec.md §4.D.
type Field int

const (
	FieldUnknown Field = iota
	FieldName
	FieldExt
	FieldSize
	FieldPath
	FieldModifiedAt
	FieldCreatedAt
	FieldMimeType
	FieldIsHidden
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldExt:
		return "ext"
	case FieldSize:
		return "size"
	case FieldPath:
		return "path"
	case FieldModifiedAt:
		return "modifiedAt"
	case FieldCreatedAt:
		return "createdAt"
	case FieldMimeType:
		return "mimeType"
	case FieldIsHidden:
		return "isHidden"
	default:
		return "unknown"
	}
}

// fieldFromIdent matches field identifiers case- and
// underscore-insensitively, per spec.md §4.D.
func fieldFromIdent(s string) (Field, bool) {
	switch normalizeIdent(s) {
	case "name", "filename":
		return FieldName, true
	case "ext", "extension":
		return FieldExt, true
	case "size", "filesize":
		return FieldSize, true
	case "path", "filepath":
		return FieldPath, true
	case "modifiedat", "modified", "mtime":
		return FieldModifiedAt, true
	case "createdat", "created", "ctime":
		return FieldCreatedAt, true
	case "mimetype", "mime":
		return FieldMimeType, true
	case "ishidden", "hidden":
		return FieldIsHidden, true
	default:
		return FieldUnknown, false
	}
}

func normalizeIdent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			c = c - 'A' + 'a'
		}
		out = append(out, c)
	}
	return string(out)
}

// Op enumerates comparison operators.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpLt
	OpGte
	OpLte
	OpIn
	OpMatches
)

func opFromToken(tok string) (Op, bool) {
	switch tok {
	case "==":
		return OpEq, true
	case "!=":
		return OpNe, true
	case ">":
		return OpGt, true
	case "<":
		return OpLt, true
	case ">=":
		return OpGte, true
	case "<=":
		return OpLte, true
	case "IN":
		return OpIn, true
	case "MATCHES":
		return OpMatches, true
	default:
		return 0, false
	}
}

// Function enumerates the recognized predicate functions.
type Function int

const (
	FuncUnknown Function = iota
	FuncContains
	FuncStartsWith
	FuncEndsWith
	FuncMatches
	FuncVectorSimilarity
)

func (fn Function) String() string {
	switch fn {
	case FuncContains:
		return "contains"
	case FuncStartsWith:
		return "startsWith"
	case FuncEndsWith:
		return "endsWith"
	case FuncMatches:
		return "matches"
	case FuncVectorSimilarity:
		return "vector_similarity"
	default:
		return "unknown"
	}
}

func functionFromIdent(s string) (Function, bool) {
	switch normalizeIdent(s) {
	case "contains":
		return FuncContains, true
	case "startswith":
		return FuncStartsWith, true
	case "endswith":
		return FuncEndsWith, true
	case "matches":
		return FuncMatches, true
	case "vectorsimilarity", "similarity":
		return FuncVectorSimilarity, true
	default:
		return FuncUnknown, false
	}
}

// ValueKind discriminates Value's active field.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueArray
	ValueSize
)

// Value is a literal appearing in a comparison or function call argument.
// SizeBytes (spec.md's `10KB`-style literal) coerces to Number for
// arithmetic but keeps its own kind so error messages stay precise.
//
// A string literal that parses as an ISO-8601 date or timestamp also
// carries IsDateLiteral/DateMs, computed once at parse time: per
// spec.md §4.D, modifiedAt/createdAt comparisons accept either an
// ISO-8601 string or an epoch-ms number, and compareValues consults
// DateMs when the field side is the numeric epoch-ms form. The literal
// keeps ValueString as its Kind, so plain string-field comparisons
// against a date-shaped string (e.g. name == "2024-01-01") still use
// ordinary string equality.
type Value struct {
	Kind          ValueKind
	Str           string
	Num           float64
	Bool          bool
	Array         []Value
	IsDateLiteral bool
	DateMs        int64
}

// dateLayouts are the ISO-8601 forms a rule literal may use for
// modifiedAt/createdAt comparisons, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDateLiteral attempts to parse s as an ISO-8601 date or
// timestamp, returning its Unix-epoch-millisecond value. A bare date
// (no time component) is treated as midnight UTC.
func parseDateLiteral(s string) (int64, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return fmt.Sprintf("%q", v.Str)
	case ValueNumber, ValueSize:
		return fmt.Sprintf("%v", v.Num)
	case ValueBool:
		return fmt.Sprintf("%v", v.Bool)
	case ValueArray:
		return fmt.Sprintf("%v", v.Array)
	default:
		return "<value>"
	}
}
