package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FileRecord is the read-only view of a VirtualFile the evaluator compares
// fields against. vfsx's VirtualFile implements this directly so the DSL
// never imports vfsx, keeping the dependency one-directional.
type FileRecord interface {
	Name() string
	Ext() string
	Size() int64
	Path() string
	ModifiedAt() time.Time
	CreatedAt() time.Time
	MimeType() string
	IsHidden() bool
}

// SimilarityFunc resolves file.vector_similarity(query) against a live
// semantic index; callers without one configured get ErrNoSimilarity for
// any rule that needs it.
type SimilarityFunc func(path, query string) (float32, bool)

// ErrNoSimilarity is returned when a rule calls vector_similarity but the
// evaluator was not given a SimilarityFunc.
var ErrNoSimilarity = fmt.Errorf("rules: vector_similarity used but no similarity source configured")

// Eval walks expr against file, short-circuiting AND/OR/NOT, and returns
// whether the rule matches.
func Eval(expr Expr, file FileRecord, sim SimilarityFunc) (bool, error) {
	switch n := expr.(type) {
	case Literal:
		return n.Value, nil
	case Not:
		inner, err := Eval(n.Inner, file, sim)
		if err != nil {
			return false, err
		}
		return !inner, nil
	case And:
		left, err := Eval(n.Left, file, sim)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return Eval(n.Right, file, sim)
	case Or:
		left, err := Eval(n.Left, file, sim)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return Eval(n.Right, file, sim)
	case Comparison:
		return evalComparison(n, file)
	case FuncCall:
		return evalFuncCallBool(n, file, sim)
	case FuncComparison:
		return evalFuncComparison(n, file, sim)
	default:
		return false, fmt.Errorf("rules: unhandled expression node %T", expr)
	}
}

func fieldValue(f Field, file FileRecord) Value {
	switch f {
	case FieldName:
		return Value{Kind: ValueString, Str: file.Name()}
	case FieldExt:
		return Value{Kind: ValueString, Str: file.Ext()}
	case FieldSize:
		return Value{Kind: ValueNumber, Num: float64(file.Size())}
	case FieldPath:
		return Value{Kind: ValueString, Str: file.Path()}
	case FieldModifiedAt:
		return Value{Kind: ValueNumber, Num: float64(file.ModifiedAt().UnixMilli())}
	case FieldCreatedAt:
		return Value{Kind: ValueNumber, Num: float64(file.CreatedAt().UnixMilli())}
	case FieldMimeType:
		return Value{Kind: ValueString, Str: file.MimeType()}
	case FieldIsHidden:
		return Value{Kind: ValueBool, Bool: file.IsHidden()}
	default:
		return Value{Kind: ValueString, Str: ""}
	}
}

func evalComparison(c Comparison, file FileRecord) (bool, error) {
	lhs := fieldValue(c.Field, file)
	return compareValues(lhs, c.Op, c.Value, c.Field.String())
}

func compareValues(lhs Value, op Op, rhs Value, name string) (bool, error) {
	switch op {
	case OpIn:
		if rhs.Kind != ValueArray {
			return false, fmt.Errorf("rules: IN requires an array literal, field %q", name)
		}
		for _, item := range rhs.Array {
			eq, err := compareValues(lhs, OpEq, item, name)
			if err != nil {
				return false, err
			}
			if eq {
				return true, nil
			}
		}
		return false, nil
	case OpMatches:
		if lhs.Kind != ValueString || rhs.Kind != ValueString {
			return false, fmt.Errorf("rules: MATCHES requires string operands, field %q", name)
		}
		re, err := regexp.Compile(rhs.Str)
		if err != nil {
			return false, fmt.Errorf("rules: invalid MATCHES pattern for %q: %w", name, err)
		}
		return re.MatchString(lhs.Str), nil
	}

	// A date-shaped string literal compared against a numeric (epoch-ms)
	// field, e.g. modifiedAt > "2024-01-01", is resolved to its parsed
	// epoch-ms value rather than falling through to string comparison.
	if isNumeric(lhs) && rhs.Kind == ValueString && rhs.IsDateLiteral {
		rhs = Value{Kind: ValueNumber, Num: float64(rhs.DateMs)}
	} else if isNumeric(rhs) && lhs.Kind == ValueString && lhs.IsDateLiteral {
		lhs = Value{Kind: ValueNumber, Num: float64(lhs.DateMs)}
	}

	// Numeric comparisons accept Number or Size interchangeably.
	if isNumeric(lhs) && isNumeric(rhs) {
		a, b := lhs.Num, rhs.Num
		switch op {
		case OpEq:
			return a == b, nil
		case OpNe:
			return a != b, nil
		case OpGt:
			return a > b, nil
		case OpLt:
			return a < b, nil
		case OpGte:
			return a >= b, nil
		case OpLte:
			return a <= b, nil
		}
	}

	if lhs.Kind == ValueString && rhs.Kind == ValueString {
		switch op {
		case OpEq:
			return lhs.Str == rhs.Str, nil
		case OpNe:
			return lhs.Str != rhs.Str, nil
		case OpGt:
			return lhs.Str > rhs.Str, nil
		case OpLt:
			return lhs.Str < rhs.Str, nil
		case OpGte:
			return lhs.Str >= rhs.Str, nil
		case OpLte:
			return lhs.Str <= rhs.Str, nil
		}
	}

	if lhs.Kind == ValueBool && rhs.Kind == ValueBool {
		switch op {
		case OpEq:
			return lhs.Bool == rhs.Bool, nil
		case OpNe:
			return lhs.Bool != rhs.Bool, nil
		}
	}

	return false, fmt.Errorf("rules: incompatible operand types for %q", name)
}

func isNumeric(v Value) bool { return v.Kind == ValueNumber || v.Kind == ValueSize }

func evalFuncCallBool(call FuncCall, file FileRecord, sim SimilarityFunc) (bool, error) {
	switch call.Function {
	case FuncContains, FuncStartsWith, FuncEndsWith, FuncMatches:
		subject, err := funcSubject(call, file)
		if err != nil {
			return false, err
		}
		if len(call.Args) != 1 || call.Args[0].Kind != ValueString {
			return false, fmt.Errorf("rules: %v expects a single string argument", call.Function)
		}
		arg := call.Args[0].Str
		switch call.Function {
		case FuncContains:
			return strings.Contains(subject, arg), nil
		case FuncStartsWith:
			return strings.HasPrefix(subject, arg), nil
		case FuncEndsWith:
			return strings.HasSuffix(subject, arg), nil
		case FuncMatches:
			re, err := regexp.Compile(arg)
			if err != nil {
				return false, fmt.Errorf("rules: invalid regex in matches(): %w", err)
			}
			return re.MatchString(subject), nil
		}
	case FuncVectorSimilarity:
		return false, fmt.Errorf("rules: vector_similarity must be used in a comparison, e.g. file.vector_similarity(\"q\") > 0.8")
	}
	return false, fmt.Errorf("rules: function %v cannot be used as a standalone predicate", call.Function)
}

func evalFuncComparison(fc FuncComparison, file FileRecord, sim SimilarityFunc) (bool, error) {
	if fc.Call.Function != FuncVectorSimilarity {
		subject, err := funcSubject(fc.Call, file)
		if err != nil {
			return false, err
		}
		return compareValues(Value{Kind: ValueString, Str: subject}, fc.Op, fc.Value, "function result")
	}

	if sim == nil {
		return false, ErrNoSimilarity
	}
	if len(fc.Call.Args) != 1 || fc.Call.Args[0].Kind != ValueString {
		return false, fmt.Errorf("rules: vector_similarity expects a single string query argument")
	}
	score, ok := sim(file.Path(), fc.Call.Args[0].Str)
	if !ok {
		return false, nil
	}
	return compareValues(Value{Kind: ValueNumber, Num: float64(score)}, fc.Op, fc.Value, "vector_similarity")
}

// funcSubject resolves the string a field-scoped or file-scoped function
// call operates on: file.name.contains(...) operates on the name field;
// bare file.contains(...) (no field segment) falls back to the file name.
func funcSubject(call FuncCall, file FileRecord) (string, error) {
	if call.HasField {
		v := fieldValue(call.Field, file)
		if v.Kind != ValueString {
			return "", fmt.Errorf("rules: %v is not a string field", call.Field)
		}
		return v.Str, nil
	}
	return file.Name(), nil
}
