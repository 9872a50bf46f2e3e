// eval.go: the NEPL constant evaluator.
//
// Evaluate defines the only semantics for every operator that has no direct
// instruction lowering, and it is the sole semantics for the textual-IR
// backend and for whole-program validation. Arithmetic is 32-bit wrapping;
// the checked operators (div, mod, pow, and the combinatorial family) work
// through 64-bit intermediates with explicit range checks before narrowing.
//
// Builtin calls evaluate to fixed stand-in constants. That is a deliberate
// compile-time approximation used for validation, constant folding and the
// textual-IR backend; the wasm backend's direct-emission path calls the real
// host import instead, and the two notions must never substitute for one
// another outside those scopes.
package nepl

import (
	"math"
	"unicode/utf8"
)

// Stand-in constants the evaluator uses in place of real host results.
const (
	standInPageSize int32 = 65536
	standInRandom   int32 = 4
)

// Evaluate reduces an expression tree to a concrete value.
func Evaluate(expr Expr) (Value, error) {
	switch e := expr.(type) {
	case *NumberExpr:
		return Num(e.Value), nil

	case *StringExpr:
		return Str(e.Value), nil

	case *VectorExpr:
		elems := make([]Value, 0, len(e.Elems))
		for _, el := range e.Elems {
			v, err := Evaluate(el)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		}
		return Vec(elems), nil

	case *CallExpr:
		args := make([]Value, 0, len(e.Args))
		for _, a := range e.Args {
			v, err := Evaluate(a)
			if err != nil {
				return Value{}, err
			}
			args = append(args, v)
		}
		return evalCall(e.Name, args)
	}
	return Value{}, semanticf("unsupported expression")
}

// Validate checks that the whole program is evaluable end-to-end using the
// stand-in builtin constants. It is the single pre-emission correctness gate
// for both backends.
func Validate(expr Expr) error {
	_, err := Evaluate(expr)
	return err
}

// evalCall dispatches one operator application. The parser guarantees the
// arity, but a mismatch reaching this far is still reported rather than
// trusted.
func evalCall(name string, args []Value) (Value, error) {
	if want, ok := arityOf(name); !ok {
		return Value{}, semanticf("unknown operator '%s'", name)
	} else if want != len(args) {
		return Value{}, semanticf("operator '%s' expects %d argument(s), got %d", name, want, len(args))
	}

	switch name {
	// ---- arithmetic (wrapping) ------------------------------------
	case "add":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(a + b), nil
	case "sub":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(a - b), nil
	case "mul":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(a * b), nil
	case "div":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		if b == 0 {
			return Value{}, &SemanticError{Msg: "division by zero is not allowed"}
		}
		if a == math.MinInt32 && b == -1 {
			return Num(math.MinInt32), nil // wraps
		}
		return Num(a / b), nil
	case "mod":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		if b == 0 {
			return Value{}, &SemanticError{Msg: "modulo by zero is not allowed"}
		}
		if a == math.MinInt32 && b == -1 {
			return Num(0), nil
		}
		return Num(a % b), nil
	case "pow":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return evalPow(a, b)
	case "neg":
		n, err := oneNumber(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(-n), nil

	// ---- logic on truthiness --------------------------------------
	case "not":
		if args[0].Truthy() {
			return Num(0), nil
		}
		return Num(1), nil
	case "and":
		return boolNum(args[0].Truthy() && args[1].Truthy()), nil
	case "or":
		return boolNum(args[0].Truthy() || args[1].Truthy()), nil
	case "xor":
		return boolNum(args[0].Truthy() != args[1].Truthy()), nil

	// ---- numeric comparisons --------------------------------------
	case "lt", "le", "eq", "ne", "gt", "ge":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		switch name {
		case "lt":
			return boolNum(a < b), nil
		case "le":
			return boolNum(a <= b), nil
		case "eq":
			return boolNum(a == b), nil
		case "ne":
			return boolNum(a != b), nil
		case "gt":
			return boolNum(a > b), nil
		default:
			return boolNum(a >= b), nil
		}

	// ---- bitwise ---------------------------------------------------
	case "bit_and":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(a & b), nil
	case "bit_or":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(a | b), nil
	case "bit_xor":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(a ^ b), nil
	case "bit_not":
		n, err := oneNumber(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(^n), nil
	case "bit_shl":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(int32(uint32(a) << (uint32(b) % 32))), nil
	case "bit_shr":
		// Logical shift, matching the i32.shr_u the wasm backend emits.
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(int32(uint32(a) >> (uint32(b) % 32))), nil

	// ---- math / combinatorics -------------------------------------
	case "gcd":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		// gcd(MinInt32, 0) is 2^31, one past the i32 range.
		g := gcd64(abs64(int64(a)), abs64(int64(b)))
		if !inI32(g) {
			return Value{}, semanticf("gcd %d %d overflows a 32-bit integer", a, b)
		}
		return Num(int32(g)), nil
	case "lcm":
		a, b, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return evalLcm(a, b)
	case "factorial":
		n, err := oneNumber(name, args)
		if err != nil {
			return Value{}, err
		}
		return evalFactorial(n)
	case "permutation":
		n, r, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return evalPermutation(n, r)
	case "combination":
		n, r, err := twoNumbers(name, args)
		if err != nil {
			return Value{}, err
		}
		return evalCombination(n, r)

	// ---- strings and vectors --------------------------------------
	case "len":
		switch args[0].Tag {
		case VTStr:
			return Num(int32(utf8.RuneCountInString(args[0].AsStr()))), nil
		case VTVector:
			return Num(int32(len(args[0].AsVector()))), nil
		}
		return Value{}, semanticf("len expects a string or a vector, got a %s", tagName(args[0].Tag))
	case "concat":
		return evalConcat(args[0], args[1])
	case "get":
		return evalGet(args[0], args[1])
	case "push":
		return evalPush(args[0], args[1])
	case "pop":
		return evalPop(args[0])

	// ---- builtin stand-ins ----------------------------------------
	case "wasm_pagesize":
		return Num(standInPageSize), nil
	case "wasi_random":
		return Num(standInRandom), nil
	case "wasi_print":
		n, err := oneNumber(name, args)
		if err != nil {
			return Value{}, err
		}
		return Num(n), nil
	}

	return Value{}, semanticf("unknown operator '%s'", name)
}

// ---- helpers -------------------------------------------------------

func boolNum(b bool) Value {
	if b {
		return Num(1)
	}
	return Num(0)
}

func oneNumber(op string, args []Value) (int32, error) {
	if args[0].Tag != VTNumber {
		return 0, semanticf("operator '%s' expects a number, got a %s", op, tagName(args[0].Tag))
	}
	return args[0].AsNumber(), nil
}

func twoNumbers(op string, args []Value) (int32, int32, error) {
	for _, a := range args {
		if a.Tag != VTNumber {
			return 0, 0, semanticf("operator '%s' expects numbers, got a %s", op, tagName(a.Tag))
		}
	}
	return args[0].AsNumber(), args[1].AsNumber(), nil
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func gcd64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func inI32(n int64) bool { return n >= math.MinInt32 && n <= math.MaxInt32 }

func evalPow(base, exp int32) (Value, error) {
	if exp < 0 {
		return Value{}, semanticf("pow does not accept a negative exponent (%d)", exp)
	}
	// 64-bit accumulation; |acc| past the overflow check can only grow, so
	// the loop terminates quickly for any |base| > 1.
	switch base {
	case 0:
		if exp == 0 {
			return Num(1), nil
		}
		return Num(0), nil
	case 1:
		return Num(1), nil
	case -1:
		if exp%2 == 0 {
			return Num(1), nil
		}
		return Num(-1), nil
	}
	acc := int64(1)
	for i := int32(0); i < exp; i++ {
		acc *= int64(base)
		if !inI32(acc) {
			return Value{}, semanticf("pow %d %d overflows a 32-bit integer", base, exp)
		}
	}
	return Num(int32(acc)), nil
}

func evalLcm(a, b int32) (Value, error) {
	if a == 0 || b == 0 {
		return Num(0), nil
	}
	g := gcd64(abs64(int64(a)), abs64(int64(b)))
	l := abs64(int64(a)) / g * abs64(int64(b))
	if !inI32(l) {
		return Value{}, semanticf("lcm %d %d overflows a 32-bit integer", a, b)
	}
	return Num(int32(l)), nil
}

func evalFactorial(n int32) (Value, error) {
	if n < 0 {
		return Value{}, semanticf("factorial of a negative number (%d) is undefined", n)
	}
	acc := int64(1)
	for i := int64(2); i <= int64(n); i++ {
		acc *= i
		if !inI32(acc) {
			return Value{}, semanticf("factorial %d overflows a 32-bit integer", n)
		}
	}
	return Num(int32(acc)), nil
}

func evalPermutation(n, r int32) (Value, error) {
	if n < 0 || r < 0 {
		return Value{}, semanticf("permutation arguments must be non-negative (got %d, %d)", n, r)
	}
	if r > n {
		return Value{}, semanticf("permutation requires r <= n (got n=%d, r=%d)", n, r)
	}
	acc := int64(1)
	for i := int64(n) - int64(r) + 1; i <= int64(n); i++ {
		acc *= i
		if !inI32(acc) {
			return Value{}, semanticf("permutation %d %d overflows a 32-bit integer", n, r)
		}
	}
	return Num(int32(acc)), nil
}

func evalCombination(n, r int32) (Value, error) {
	if n < 0 || r < 0 {
		return Value{}, semanticf("combination arguments must be non-negative (got %d, %d)", n, r)
	}
	if r > n {
		return Value{}, semanticf("combination requires r <= n (got n=%d, r=%d)", n, r)
	}
	if int64(r) > int64(n)-int64(r) {
		r = n - r // C(n, r) == C(n, n-r); keep the loop short
	}
	acc := int64(1)
	for i := int64(1); i <= int64(r); i++ {
		acc = acc * (int64(n) - int64(r) + i) / i
		if !inI32(acc) {
			return Value{}, semanticf("combination %d %d overflows a 32-bit integer", n, r)
		}
	}
	return Num(int32(acc)), nil
}

func evalConcat(a, b Value) (Value, error) {
	switch {
	case a.Tag == VTStr && b.Tag == VTStr:
		return Str(a.AsStr() + b.AsStr()), nil
	case a.Tag == VTVector && b.Tag == VTVector:
		av, bv := a.AsVector(), b.AsVector()
		out := make([]Value, 0, len(av)+len(bv))
		out = append(out, av...)
		out = append(out, bv...)
		return Vec(out), nil
	}
	return Value{}, semanticf("concat expects two strings or two vectors, got a %s and a %s",
		tagName(a.Tag), tagName(b.Tag))
}

func evalGet(coll, idx Value) (Value, error) {
	if idx.Tag != VTNumber {
		return Value{}, semanticf("get expects a numeric index, got a %s", tagName(idx.Tag))
	}
	i := idx.AsNumber()
	switch coll.Tag {
	case VTStr:
		runes := []rune(coll.AsStr())
		if i < 0 || int(i) >= len(runes) {
			return Value{}, semanticf("index %d out of range for a string of length %d", i, len(runes))
		}
		return Str(string(runes[i])), nil
	case VTVector:
		elems := coll.AsVector()
		if i < 0 || int(i) >= len(elems) {
			return Value{}, semanticf("index %d out of range for a vector of length %d", i, len(elems))
		}
		return elems[i], nil
	}
	return Value{}, semanticf("get expects a string or a vector, got a %s", tagName(coll.Tag))
}

func evalPush(coll, el Value) (Value, error) {
	switch coll.Tag {
	case VTStr:
		if el.Tag != VTStr {
			return Value{}, semanticf("push on a string expects a string value, got a %s", tagName(el.Tag))
		}
		return Str(coll.AsStr() + el.AsStr()), nil
	case VTVector:
		src := coll.AsVector()
		out := make([]Value, 0, len(src)+1)
		out = append(out, src...)
		out = append(out, el)
		return Vec(out), nil
	}
	return Value{}, semanticf("push expects a string or a vector, got a %s", tagName(coll.Tag))
}

func evalPop(coll Value) (Value, error) {
	switch coll.Tag {
	case VTStr:
		runes := []rune(coll.AsStr())
		if len(runes) == 0 {
			return Value{}, &SemanticError{Msg: "cannot pop from an empty string"}
		}
		return Str(string(runes[:len(runes)-1])), nil
	case VTVector:
		elems := coll.AsVector()
		if len(elems) == 0 {
			return Value{}, &SemanticError{Msg: "cannot pop from an empty vector"}
		}
		out := make([]Value, len(elems)-1)
		copy(out, elems[:len(elems)-1])
		return Vec(out), nil
	}
	return Value{}, semanticf("pop expects a string or a vector, got a %s", tagName(coll.Tag))
}
