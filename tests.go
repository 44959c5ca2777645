package jinja2go

import "github.com/wangzhaode/jinja2go/value"

func registerBuiltinTests(env *Environment) {
	// "defined" and "undefined" are special-cased in evalTest because
	// they need the unevaluated expression, not just its (permissive)
	// value; they are not reachable through the test registry.
	env.AddTest("none", testNone)
	env.AddTest("string", testString)
	env.AddTest("number", testNumber)
	env.AddTest("mapping", testMapping)
	env.AddTest("sequence", testSequence)
	env.AddTest("iterable", testIterable)
	env.AddTest("boolean", testBoolean)
	env.AddTest("true", testTrue)
	env.AddTest("false", testFalse)
	env.AddTest("even", testEven)
	env.AddTest("odd", testOdd)
	env.AddTest("divisibleby", testDivisibleBy)
	env.AddTest("equalto", testEqualTo)
	env.AddTest("in", testIn)
}

func testNone(input value.Value, args []value.Value) (bool, error) {
	return input.IsNone(), nil
}

func testString(input value.Value, args []value.Value) (bool, error) {
	return input.Kind() == value.KindStr, nil
}

func testNumber(input value.Value, args []value.Value) (bool, error) {
	return input.Kind() == value.KindInt || input.Kind() == value.KindFloat, nil
}

func testMapping(input value.Value, args []value.Value) (bool, error) {
	return input.Kind() == value.KindMap, nil
}

func testSequence(input value.Value, args []value.Value) (bool, error) {
	return input.Kind() == value.KindSeq || input.Kind() == value.KindStr, nil
}

func testIterable(input value.Value, args []value.Value) (bool, error) {
	_, ok := input.Iterate()
	return ok, nil
}

func testBoolean(input value.Value, args []value.Value) (bool, error) {
	return input.Kind() == value.KindBool, nil
}

func testTrue(input value.Value, args []value.Value) (bool, error) {
	b, ok := input.AsBool()
	return ok && b, nil
}

func testFalse(input value.Value, args []value.Value) (bool, error) {
	b, ok := input.AsBool()
	return ok && !b, nil
}

func testEven(input value.Value, args []value.Value) (bool, error) {
	i, ok := input.AsInt()
	if !ok {
		return false, nil
	}
	return i%2 == 0, nil
}

func testOdd(input value.Value, args []value.Value) (bool, error) {
	i, ok := input.AsInt()
	if !ok {
		return false, nil
	}
	return i%2 != 0, nil
}

func testDivisibleBy(input value.Value, args []value.Value) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	a, aok := input.AsNumber()
	b, bok := args[0].AsNumber()
	if !aok || !bok || b == 0 {
		return false, nil
	}
	return int64(a)%int64(b) == 0, nil
}

func testEqualTo(input value.Value, args []value.Value) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	return value.Equal(input, args[0]), nil
}

func testIn(input value.Value, args []value.Value) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	ok, err := value.Contains(input, args[0])
	if err != nil {
		return false, nil
	}
	return ok, nil
}
