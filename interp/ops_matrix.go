package interp

import (
	"fmt"
	"math"

	"github.com/gogpu/shadergraph/ir"
)

func init() {
	registerOp("mat_construct_identity", opMatIdentity)
	registerOp("mat_mul", opMatMul)
	registerOp("mat_transpose", opMatTranspose)
	registerOp("mat_transform", opMatTransform)

	registerOp("quat_identity", opQuatIdentity)
	registerOp("quat_from_axis_angle", opQuatFromAxisAngle)
	registerOp("quat_mul", opQuatMul)
	registerOp("quat_rotate_vec", opQuatRotateVec)
	registerOp("quat_normalize", opQuatNormalize)
	registerOp("quat_slerp", opQuatSlerp)
}

// Matrices are flat []float64 in column-major order; the dimension is
// inferred from the length (4, 9, or 16).
func matDim(m []float64) (int, error) {
	switch len(m) {
	case 4:
		return 2, nil
	case 9:
		return 3, nil
	case 16:
		return 4, nil
	default:
		return 0, fmt.Errorf("matrix must have 4, 9, or 16 elements, got %d", len(m))
	}
}

func opMatIdentity(_ *funcRun, n *ir.Node, _ map[string]Value) (Value, error) {
	size := 4
	if raw, ok := n.Props["size"]; ok {
		f, err := toFloat(raw)
		if err != nil {
			return nil, err
		}
		size = int(f)
	}
	if size < 2 || size > 4 {
		return nil, fmt.Errorf("matrix size must be 2, 3, or 4, got %d", size)
	}
	out := make([]float64, size*size)
	for i := 0; i < size; i++ {
		out[i*size+i] = 1
	}
	return out, nil
}

func opMatMul(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	a, err := needVec(args, "a")
	if err != nil {
		return nil, err
	}
	b, err := needVec(args, "b")
	if err != nil {
		return nil, err
	}
	dim, err := matDim(a)
	if err != nil {
		return nil, err
	}
	bDim, err := matDim(b)
	if err != nil {
		return nil, err
	}
	if dim != bDim {
		return nil, fmt.Errorf("matrix dimension mismatch: %dx%d vs %dx%d", dim, dim, bDim, bDim)
	}
	out := make([]float64, dim*dim)
	for col := 0; col < dim; col++ {
		for row := 0; row < dim; row++ {
			var sum float64
			for k := 0; k < dim; k++ {
				sum += a[k*dim+row] * b[col*dim+k]
			}
			out[col*dim+row] = sum
		}
	}
	return out, nil
}

func opMatTranspose(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	m, err := needVec(args, "value")
	if err != nil {
		return nil, err
	}
	dim, err := matDim(m)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(m))
	for col := 0; col < dim; col++ {
		for row := 0; row < dim; row++ {
			out[row*dim+col] = m[col*dim+row]
		}
	}
	return out, nil
}

// opMatTransform multiplies matrix × vector. A vector one component short
// of the matrix dimension is treated as homogeneous with w = 1 and the
// result is truncated back.
func opMatTransform(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	m, err := needVec(args, "matrix")
	if err != nil {
		return nil, err
	}
	v, err := needVec(args, "vector")
	if err != nil {
		return nil, err
	}
	dim, err := matDim(m)
	if err != nil {
		return nil, err
	}
	homogeneous := false
	switch len(v) {
	case dim:
	case dim - 1:
		homogeneous = true
		v = append(append([]float64{}, v...), 1)
	default:
		return nil, fmt.Errorf("cannot transform a %d-vector by a %dx%d matrix", len(v), dim, dim)
	}
	out := make([]float64, dim)
	for row := 0; row < dim; row++ {
		var sum float64
		for col := 0; col < dim; col++ {
			sum += m[col*dim+row] * v[col]
		}
		out[row] = sum
	}
	if homogeneous {
		out = out[:dim-1]
	}
	return out, nil
}

// Quaternions are []float64{x, y, z, w}.

func needQuat(args map[string]Value, name string) ([]float64, error) {
	q, err := needVec(args, name)
	if err != nil {
		return nil, err
	}
	if len(q) != 4 {
		return nil, fmt.Errorf("argument %q: quaternion must have 4 components, got %d", name, len(q))
	}
	return q, nil
}

func opQuatIdentity(_ *funcRun, _ *ir.Node, _ map[string]Value) (Value, error) {
	return []float64{0, 0, 0, 1}, nil
}

func opQuatFromAxisAngle(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	axis, err := needVec(args, "axis")
	if err != nil {
		return nil, err
	}
	if len(axis) != 3 {
		return nil, fmt.Errorf("axis must be a 3-vector, got %d components", len(axis))
	}
	angle, err := needFloat(args, "angle")
	if err != nil {
		return nil, err
	}
	length := vecLength(axis)
	if length == 0 {
		return nil, fmt.Errorf("rotation axis has zero length")
	}
	s := math.Sin(angle/2) / length
	return []float64{axis[0] * s, axis[1] * s, axis[2] * s, math.Cos(angle / 2)}, nil
}

func opQuatMul(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	a, err := needQuat(args, "a")
	if err != nil {
		return nil, err
	}
	b, err := needQuat(args, "b")
	if err != nil {
		return nil, err
	}
	return quatMul(a, b), nil
}

func quatMul(a, b []float64) []float64 {
	return []float64{
		a[3]*b[0] + a[0]*b[3] + a[1]*b[2] - a[2]*b[1],
		a[3]*b[1] - a[0]*b[2] + a[1]*b[3] + a[2]*b[0],
		a[3]*b[2] + a[0]*b[1] - a[1]*b[0] + a[2]*b[3],
		a[3]*b[3] - a[0]*b[0] - a[1]*b[1] - a[2]*b[2],
	}
}

func opQuatRotateVec(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	q, err := needQuat(args, "quat")
	if err != nil {
		return nil, err
	}
	v, err := needVec(args, "vector")
	if err != nil {
		return nil, err
	}
	if len(v) != 3 {
		return nil, fmt.Errorf("vector must have 3 components, got %d", len(v))
	}
	// v' = v + 2w(q×v) + 2(q×(q×v))
	qv := q[:3]
	t := cross3(qv, v)
	for i := range t {
		t[i] *= 2
	}
	u := cross3(qv, t)
	return []float64{
		v[0] + q[3]*t[0] + u[0],
		v[1] + q[3]*t[1] + u[1],
		v[2] + q[3]*t[2] + u[2],
	}, nil
}

func opQuatNormalize(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	q, err := needQuat(args, "value")
	if err != nil {
		return nil, err
	}
	length := vecLength(q)
	if length == 0 {
		return nil, fmt.Errorf("cannot normalize a zero-length quaternion")
	}
	out := make([]float64, 4)
	for i := range q {
		out[i] = q[i] / length
	}
	return out, nil
}

func opQuatSlerp(_ *funcRun, _ *ir.Node, args map[string]Value) (Value, error) {
	a, err := needQuat(args, "a")
	if err != nil {
		return nil, err
	}
	b, err := needQuat(args, "b")
	if err != nil {
		return nil, err
	}
	t, err := needFloat(args, "t")
	if err != nil {
		return nil, err
	}

	dot := a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
	bb := append([]float64{}, b...)
	if dot < 0 {
		// Take the shorter arc.
		dot = -dot
		for i := range bb {
			bb[i] = -bb[i]
		}
	}
	const closeEnough = 0.9995
	if dot > closeEnough {
		// Nearly parallel: linear interpolation avoids a degenerate sin.
		out := make([]float64, 4)
		for i := range out {
			out[i] = a[i] + t*(bb[i]-a[i])
		}
		length := vecLength(out)
		for i := range out {
			out[i] /= length
		}
		return out, nil
	}
	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	out := make([]float64, 4)
	for i := range out {
		out[i] = wa*a[i] + wb*bb[i]
	}
	return out, nil
}
