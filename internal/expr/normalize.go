package expr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Placeholders that keep ln and log apart until qualification is finished.
const (
	markerNaturalLog = "_NATURAL_LOG_"
	markerLogBase10  = "_LOG_BASE_10_"
)

// glyphs maps keyboard symbols onto their ASCII spelling.
var glyphs = strings.NewReplacer(
	"π", "pi",
	"×", "*",
	"·", "*",
	"÷", "/",
	"−", "-",
	"²", "^2",
	"³", "^3",
)

// poweredNames can be written with an exponent between name and argument,
// as in sin^2(x).
var poweredNames = []string{
	"sin", "cos", "tan", "sec", "csc", "cot",
	"asin", "acos", "atan", "sinh", "cosh", "tanh",
	"ln", "log", "sqrt", "abs", "exp",
}

// qualifiedNames are rewritten to math.<name> in pass 4. ln and log are
// absent: they are markers at that point.
var qualifiedNames = []string{
	"asinh", "acosh", "atanh", "sinh", "cosh", "tanh",
	"asin", "acos", "atan2", "atan", "sin", "cos", "tan", "sec", "csc", "cot",
	"expm1", "exp", "log10", "log2", "log1p",
	"sqrt", "cbrt", "abs", "sign",
	"ceil", "floor", "round", "trunc",
	"max", "min", "pow", "root",
}

var (
	poweredCallRE = func() map[string]*regexp.Regexp {
		m := make(map[string]*regexp.Regexp, len(poweredNames))
		for _, name := range poweredNames {
			m[name] = regexp.MustCompile(`((?:[Mm]ath\.)?` + name + `)\^([0-9.]+)\s*\(`)
		}
		return m
	}()

	lnCallRE    = regexp.MustCompile(`ln\s*\(`)
	logCallRE   = regexp.MustCompile(`log\s*\(`)
	piRE        = regexp.MustCompile(`(?i)pi\b`)
	eRE         = regexp.MustCompile(`\be\b`)
	qualifyRE   = regexp.MustCompile(`(?:` + strings.Join(qualifiedNames, "|") + `)\b`)
	digitParen  = regexp.MustCompile(`([0-9])\s*(\()`)
	digitIdent  = regexp.MustCompile(`([0-9])\s*([A-Za-z_])`)
	closeDigit  = regexp.MustCompile(`(\))([0-9])`)
	closeLetter = regexp.MustCompile(`(\))([A-Za-z_])`)
	closeOpen   = regexp.MustCompile(`(\))(\()`)
)

// Normalize rewrites a formula into the canonical form the parser reads.
// It never fails; text the passes do not recognize is left for the parser
// to reject. Normalize(Normalize(s)) == Normalize(s).
func Normalize(formula string) string {
	s := prepare(formula)
	s = expandPoweredCalls(s)
	s = strings.ReplaceAll(s, "^", "**")
	s = markLogs(s)
	s = qualifyConstants(s)
	s = replaceStandalone(s, qualifyRE, func(name string) string { return "math." + name })
	s = insertImplicitMultiplication(s)
	s = qualifyConstants(s)
	s = strings.ReplaceAll(s, markerNaturalLog, "math.ln")
	s = strings.ReplaceAll(s, markerLogBase10, "math.log10")
	return s
}

// prepare maps keyboard glyphs and applies NFC so visually identical input
// normalizes identically.
func prepare(formula string) string {
	s := norm.NFC.String(formula)
	return strings.TrimSpace(glyphs.Replace(s))
}

// standalone reports whether the name starting at i begins a token of its
// own. It must not be qualified already (math.sin), nor be the tail of a
// longer identifier. A directly preceding number is allowed, as in 2sin(x).
func standalone(s string, i int) bool {
	if i == 0 {
		return true
	}
	switch c := s[i-1]; {
	case c == '.' || isLetter(c):
		return false
	case isDigit(c):
		return numberEndsAt(s, i-1)
	}
	return true
}

// replaceStandalone rewrites every match of re that starts a token.
func replaceStandalone(s string, re *regexp.Regexp, repl func(match string) string) string {
	locs := re.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		if !standalone(s, loc[0]) {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(repl(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// expandPoweredCalls turns name^k(args) into (name(args))^k. The argument
// extends to the matching close paren; an unbalanced call is left alone.
func expandPoweredCalls(s string) string {
	for _, name := range poweredNames {
		re := poweredCallRE[name]
		from := 0
		for from < len(s) {
			m := re.FindStringSubmatchIndex(s[from:])
			if m == nil {
				break
			}
			start, end := from+m[0], from+m[1]
			if !standalone(s, start) {
				from = end
				continue
			}
			open := end - 1
			closing := matchingParen(s, open)
			if closing < 0 {
				from = end
				continue
			}
			fn := s[from+m[2] : from+m[3]]
			exp := s[from+m[4] : from+m[5]]
			rewritten := "(" + fn + "(" + s[open+1:closing] + "))^" + exp
			s = s[:start] + rewritten + s[closing+1:]
			from = start + 1
		}
	}
	return s
}

// matchingParen returns the index of the ')' closing the '(' at open, or -1.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func markLogs(s string) string {
	s = replaceStandalone(s, lnCallRE, func(string) string { return markerNaturalLog + "(" })
	return replaceStandalone(s, logCallRE, func(string) string { return markerLogBase10 + "(" })
}

func qualifyConstants(s string) string {
	s = replaceStandalone(s, piRE, func(string) string { return "math.pi" })
	return replaceStandalone(s, eRE, func(string) string { return "math.e" })
}

// insertImplicitMultiplication makes juxtaposition explicit. The steps run
// in a fixed order: number before '(', number before a name, then ')'
// before a digit, a name, or '('. Constants it exposes (2e, 2pi) are
// qualified by the second constant pass in Normalize.
func insertImplicitMultiplication(s string) string {
	s = insertStar(s, digitParen, func(s string, m []int) bool {
		return numberEndsAt(s, m[2])
	})
	s = insertStar(s, digitIdent, func(s string, m []int) bool {
		return numberEndsAt(s, m[2]) && juxtaposedName(s, m[4])
	})
	for _, re := range []*regexp.Regexp{closeDigit, closeLetter, closeOpen} {
		s = insertStar(s, re, nil)
	}
	return s
}

// insertStar joins the two groups of every accepted match with '*',
// dropping whitespace between them.
func insertStar(s string, re *regexp.Regexp, accept func(s string, m []int) bool) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		if accept != nil && !accept(s, m) {
			continue
		}
		b.WriteString(s[last:m[3]])
		b.WriteByte('*')
		last = m[4]
	}
	b.WriteString(s[last:])
	return b.String()
}

// numberEndsAt reports whether the digit at i ends a numeric literal
// rather than a name like log10.
func numberEndsAt(s string, i int) bool {
	for i > 0 && (isDigit(s[i-1]) || s[i-1] == '.') {
		i--
	}
	return i == 0 || !isIdentChar(s[i-1])
}

// juxtaposedName reports whether the name starting at i may follow a
// number directly: a single-letter variable or constant, a qualified
// math.<name>, or a log marker. The e of an exponent (2e-1) is not a name.
func juxtaposedName(s string, i int) bool {
	j := i
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	name := s[i:j]
	var next byte
	if j < len(s) {
		next = s[j]
	}
	switch {
	case name == markerNaturalLog || name == markerLogBase10:
		return true
	case name == "math" || name == "Math":
		return next == '.'
	case (name == "e" || name == "E") && (next == '+' || next == '-'):
		return j+1 >= len(s) || !isDigit(s[j+1])
	case len(name) == 1:
		return next != '.'
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' }

func isIdentChar(c byte) bool { return isLetter(c) || isDigit(c) }
