package whoops

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Skipper reports whether a request bypasses the boundary.
type Skipper func(*http.Request) bool

func ChainSkipper(skippers ...Skipper) Skipper {
	return func(r *http.Request) bool {
		for _, skipper := range skippers {
			if skipper(r) {
				return true
			}
		}
		return false
	}
}

// PrefixPathSkipper skips requests whose path starts with one of prefixes.
// A prefix may be preceded by a method, e.g. "GET /events".
func PrefixPathSkipper(prefixes ...string) Skipper {
	lowered := make([]string, len(prefixes))
	for i, prefix := range prefixes {
		lowered[i] = strings.ToLower(prefix)
	}

	return func(r *http.Request) bool {
		p := strings.ToLower(r.URL.Path)
		m := strings.ToLower(r.Method)
		for _, prefix := range lowered {
			if prefix, ok := checkMethod(m, prefix); ok && strings.HasPrefix(p, prefix) {
				return true
			}
		}
		return false
	}
}

func checkMethod(method, pattern string) (string, bool) {
	if index := strings.IndexRune(pattern, ' '); index > 0 {
		if method == pattern[:index] {
			return strings.TrimSpace(pattern[index+1:]), true
		}
		return "", false
	}
	return pattern, true
}

// RequestEnv is the environment expressions of ExpressionSkipper are evaluated against
// when the skipper is built from Config.SkipExpressions.
type RequestEnv struct {
	Method string            `expr:"method"`
	Path   string            `expr:"path"`
	Accept string            `expr:"accept"`
	Header map[string]string `expr:"header"`
}

func NewRequestEnv(r *http.Request) RequestEnv {
	header := make(map[string]string, len(r.Header))
	for name := range r.Header {
		header[name] = r.Header.Get(name)
	}

	return RequestEnv{
		Method: r.Method,
		Path:   r.URL.Path,
		Accept: r.Header.Get(HeaderAccept),
		Header: header,
	}
}

// ExpressionSkipper creates a Skipper evaluating boolean expressions against
// an environment generated from requests. Expressions that fail to compile are ignored.
//
// Documentation can be found here: https://expr-lang.org/
func ExpressionSkipper[Env any](fn func(*http.Request) Env, expressions ...string) Skipper {
	zero := reflect.Zero(reflect.TypeFor[Env]()).Interface()
	programs := make([]*vm.Program, 0, len(expressions))
	for _, expression := range expressions {
		program, err := expr.Compile(expression, expr.Env(zero), expr.AsBool())
		if err != nil {
			continue
		}
		programs = append(programs, program)
	}

	return func(r *http.Request) bool {
		if len(programs) == 0 {
			return false
		}

		env := fn(r)

		for _, program := range programs {
			if ok, err := expr.Run(program, env); err == nil && ok.(bool) {
				return true
			}
		}
		return false
	}
}
