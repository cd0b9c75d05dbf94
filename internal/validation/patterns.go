package validation

import "plate-stabilizer/internal/domain/plate"

var builtinExpressions = map[plate.PatternName]string{
	plate.PatternStandard:       `^[A-Za-z]+Metro[A-Za-z]+\s+\d{6}$`, // ChattoMetroGa 138707
	plate.PatternMetroBasic:     `^[A-Za-z]+Metro\s+\d{6}$`,          // DhakaMetro 115636
	plate.PatternDistrictSimple: `^(?!.*Metro)[A-Za-z]+\s+\d{2,6}$`,  // Chatto 13
}

// BuiltinNames lists the named rules in the order multi-pattern mode tries them.
func BuiltinNames() []plate.PatternName {
	return []plate.PatternName{
		plate.PatternStandard,
		plate.PatternMetroBasic,
		plate.PatternDistrictSimple,
	}
}

// Expression resolves a pattern name to its expression. The custom rule comes
// from the filter config and may be empty.
func Expression(name plate.PatternName, cfg plate.FilterConfig) string {
	if name == plate.PatternCustom {
		return cfg.CustomExpression
	}
	return builtinExpressions[name]
}

// Candidates returns the expressions a text is tested against under cfg.
// Multi-pattern mode with the custom rule selected tests only the custom rule.
func Candidates(cfg plate.FilterConfig) []string {
	if cfg.ActivePattern == plate.PatternCustom {
		if cfg.CustomExpression == "" {
			return nil
		}
		return []string{cfg.CustomExpression}
	}

	if cfg.MultiPatternMode {
		out := make([]string, 0, len(builtinExpressions))
		for _, name := range BuiltinNames() {
			out = append(out, builtinExpressions[name])
		}
		return out
	}

	if expr := builtinExpressions[cfg.ActivePattern]; expr != "" {
		return []string{expr}
	}
	return nil
}
