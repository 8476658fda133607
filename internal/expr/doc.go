// Package expr compiles single-variable formulas typed by a user into
// evaluators.
//
// Compilation is a two-stage pipeline. Normalize applies six textual passes
// in a fixed order:
//
//  1. exponent normalization: name^k(args) becomes (name(args))^k, then
//     every ^ becomes **
//  2. ln( and log( are protected behind markers
//  3. pi and bare e become math.pi and math.e
//  4. bare function names are qualified into the math namespace
//  5. implicit multiplication is inserted
//  6. the markers resolve to math.ln and math.log10
//
// Later passes assume earlier ones have run; the markers exist so that
// passes 3 to 5 can never touch the two logarithms. The normalized text is
// then parsed into a small tree (number, variable, constant, call, unary,
// binary, power) and evaluated directly against an explicit function table.
//
// Evaluation never fails. A formula that cannot be parsed compiles to an
// evaluator that always returns NaN, and arithmetic follows IEEE 754
// (1/0 is +Inf, log(-1) is NaN). Callers detect trouble by checking for
// non-finite results.
package expr
