package ir

import "math"

// LiteralType classifies the shape of a literal property value as it
// arrives from the wire (JSON numbers are float64, vectors are []any).
type LiteralType string

const (
	LiteralFloat  LiteralType = "float"
	LiteralInt    LiteralType = "int"
	LiteralBool   LiteralType = "bool"
	LiteralFloat2 LiteralType = "float2"
	LiteralFloat3 LiteralType = "float3"
	LiteralFloat4 LiteralType = "float4"
	LiteralInt2   LiteralType = "int2"
	LiteralInt3   LiteralType = "int3"
	LiteralInt4   LiteralType = "int4"
	LiteralString LiteralType = "string"
	LiteralArray  LiteralType = "array"
	LiteralObject LiteralType = "object"
	LiteralNone   LiteralType = ""
)

// LiteralShapeOf classifies a decoded property value. Numeric vectors of
// length 2-4 classify as floatN/intN; other arrays classify as "array".
func LiteralShapeOf(v any) LiteralType {
	switch val := v.(type) {
	case bool:
		return LiteralBool
	case float64:
		if isIntegral(val) {
			return LiteralInt
		}
		return LiteralFloat
	case int:
		return LiteralInt
	case string:
		return LiteralString
	case map[string]any:
		return LiteralObject
	case []any:
		return vectorShape(val)
	case []float64:
		allInt := true
		for _, f := range val {
			if !isIntegral(f) {
				allInt = false
				break
			}
		}
		return numericVectorShape(len(val), allInt)
	default:
		return LiteralNone
	}
}

func vectorShape(elems []any) LiteralType {
	allInt := true
	for _, e := range elems {
		f, ok := e.(float64)
		if !ok {
			if _, isInt := e.(int); !isInt {
				return LiteralArray
			}
			continue
		}
		if !isIntegral(f) {
			allInt = false
		}
	}
	return numericVectorShape(len(elems), allInt)
}

func numericVectorShape(n int, allInt bool) LiteralType {
	switch n {
	case 2:
		if allInt {
			return LiteralInt2
		}
		return LiteralFloat2
	case 3:
		if allInt {
			return LiteralInt3
		}
		return LiteralFloat3
	case 4:
		if allInt {
			return LiteralInt4
		}
		return LiteralFloat4
	default:
		return LiteralArray
	}
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0)
}

// Satisfies reports whether a literal of shape got is accepted where want
// is expected. An int literal satisfies a float slot, and intN vectors
// satisfy floatN slots, since every integral number is a valid float.
func (got LiteralType) Satisfies(want LiteralType) bool {
	if got == want {
		return true
	}
	switch want {
	case LiteralFloat:
		return got == LiteralInt
	case LiteralFloat2:
		return got == LiteralInt2
	case LiteralFloat3:
		return got == LiteralInt3
	case LiteralFloat4:
		return got == LiteralInt4
	}
	return false
}
