// Package lang statically evaluates TypeScript expressions to concrete
// values without running them.
//
// A [Program] is a set of parsed modules rooted at a file system, plus an
// embedded helper module imported as "prestyle". Evaluation reduces an
// expression to a [Value] by following identifiers to their declarations
// across imports and re-exports. Whatever cannot be reduced that way
// yields a [*Sentinel]: a marker carrying a human-readable reason and the
// offending syntax node, which callers use to fall back to runtime
// evaluation. Sentinels are never errors; the error return of the
// evaluation entry points is reserved for configuration failures and
// cancellation.
//
// # Supported forms
//
//   - literals: numbers, strings, booleans, null, undefined, untagged
//     templates, arrays (holes, spread) and objects (shorthand, computed
//     keys, methods, spread)
//   - unary + - ~ ! typeof and binary + - * / == != === !== < > <= >= in,
//     plus the short-circuiting && || ??
//   - conditional expressions, evaluating only the taken branch
//   - member, element and call chains with optional chaining
//   - arrow and function expressions whose body reduces to at most one
//     return, with defaults and rest parameters
//   - enums, with forward and reverse entries
//
// Parenthesized expressions, as-expressions, non-null assertions and
// satisfies checks evaluate to their operand.
//
// # Example
//
//	p, err := lang.Load(ctx, []string{"theme.ts"}, lang.WithFS(os.DirFS(root)))
//	if err != nil {
//		return err
//	}
//
//	v, s, err := p.EvaluateExport(ctx, "theme.ts", "button")
//	switch {
//	case err != nil:
//		return err
//	case s != nil:
//		fmt.Println("requires runtime:", s)
//	default:
//		fmt.Println(lang.Inspect(v))
//	}
package lang
