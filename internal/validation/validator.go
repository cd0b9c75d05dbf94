// Package validation checks stable plate text against the configured format
// rules. Rules use backtracking syntax (lookahead included) through regexp2,
// are matched case-insensitively and always against the whole string.
package validation

import (
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog"

	"plate-stabilizer/internal/domain/plate"
)

const (
	defaultMatchTimeout = 100 * time.Millisecond
	maxCachedPatterns   = 64
)

type compiled struct {
	re  *regexp2.Regexp
	err error
}

type Validator struct {
	log          zerolog.Logger
	matchTimeout time.Duration

	mu    sync.Mutex
	cache map[string]compiled
}

func NewValidator(log zerolog.Logger) *Validator {
	return &Validator{
		log:          log,
		matchTimeout: defaultMatchTimeout,
		cache:        make(map[string]compiled),
	}
}

// Validate reports whether text passes cfg. A disabled filter passes
// everything; an expression that does not compile never matches.
func (v *Validator) Validate(text string, cfg plate.FilterConfig) bool {
	if !cfg.Enabled {
		return true
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	for _, expr := range Candidates(cfg) {
		ok, err := v.Match(expr, text)
		if err != nil {
			v.log.Debug().Err(err).Str("pattern", expr).Msg("skipping unusable pattern")
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// Match tests text against a single expression, anchored at both ends.
func (v *Validator) Match(expr, text string) (bool, error) {
	re, err := v.compile(expr)
	if err != nil {
		return false, err
	}
	return re.MatchString(text)
}

// Compile reports whether expr is a usable rule.
func (v *Validator) Compile(expr string) error {
	_, err := v.compile(expr)
	return err
}

func (v *Validator) compile(expr string) (*regexp2.Regexp, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if c, ok := v.cache[expr]; ok {
		return c.re, c.err
	}
	if len(v.cache) >= maxCachedPatterns {
		v.cache = make(map[string]compiled)
	}

	c := compiled{}
	// The bare expression is checked first so that wrapping cannot turn an
	// unbalanced expression into a valid one.
	if _, err := regexp2.Compile(expr, regexp2.IgnoreCase); err != nil {
		c.err = err
	} else if re, err := wrapFull(expr); err != nil {
		c.err = err
	} else {
		re.MatchTimeout = v.matchTimeout
		c.re = re
	}
	v.cache[expr] = c
	return c.re, c.err
}

type PatternResult struct {
	Name       plate.PatternName `json:"name"`
	Expression string            `json:"expression"`
	Matched    bool              `json:"matched"`
	Error      string            `json:"error,omitempty"`
}

// Report explains a validation: the overall verdict under cfg plus how the
// text fares against every rule in the registry.
type Report struct {
	Text     string             `json:"text"`
	Valid    bool               `json:"valid"`
	Filter   plate.FilterConfig `json:"filter"`
	Patterns []PatternResult    `json:"patterns"`
}

func (v *Validator) Explain(text string, cfg plate.FilterConfig) Report {
	trimmed := strings.TrimSpace(text)
	report := Report{
		Text:   text,
		Valid:  v.Validate(text, cfg),
		Filter: cfg,
	}

	names := append(BuiltinNames(), plate.PatternCustom)
	for _, name := range names {
		expr := Expression(name, cfg)
		res := PatternResult{Name: name, Expression: expr}
		if expr != "" {
			ok, err := v.Match(expr, trimmed)
			res.Matched = ok
			if err != nil {
				res.Error = err.Error()
			}
		}
		report.Patterns = append(report.Patterns, res)
	}
	return report
}

// wrapFull anchors expr to the whole input. An expression in (?x) mode may end
// in a line comment that would swallow the closing group, so a newline is put
// before it when the plain wrap does not compile.
func wrapFull(expr string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(`\A(?:`+expr+`)\z`, regexp2.IgnoreCase)
	if err == nil {
		return re, nil
	}
	if alt, altErr := regexp2.Compile(`\A(?:`+expr+"\n)\\z", regexp2.IgnoreCase); altErr == nil {
		return alt, nil
	}
	return nil, err
}
