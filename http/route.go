package http

import "strings"

type segmentKind uint8

const (
	segmentStatic segmentKind = iota
	segmentParam
	segmentWildcard
)

type segment struct {
	kind  segmentKind
	value string
}

type Route struct {
	Method  string
	Path    string
	Handler Handler

	segments []segment
	wildcard bool
}

// MatchedRoute is the result of a successful lookup.
type MatchedRoute struct {
	Method  string
	Path    string
	Handler Handler
	Params  map[string]string
	Query   map[string]string
}

func newRoute(method, path string, handler Handler) Route {
	route := Route{
		Method:  method,
		Path:    path,
		Handler: handler,
	}

	for _, part := range splitPath(path) {
		switch {
		case part == "*":
			route.segments = append(route.segments, segment{kind: segmentWildcard})
			route.wildcard = true
		case part[0] == ':':
			route.segments = append(route.segments, segment{kind: segmentParam, value: part[1:]})
		default:
			route.segments = append(route.segments, segment{kind: segmentStatic, value: part})
		}
	}

	return route
}

// match binds parts against the route's segments. A wildcard matches the
// remaining parts, zero or more of them.
func (route *Route) match(parts []string) (map[string]string, bool) {
	if len(route.segments) != len(parts) && !route.wildcard {
		return nil, false
	}

	var params map[string]string
	for i, seg := range route.segments {
		if seg.kind == segmentWildcard {
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}

		switch seg.kind {
		case segmentStatic:
			if seg.value != parts[i] {
				return nil, false
			}
		case segmentParam:
			if params == nil {
				params = make(map[string]string, len(route.segments))
			}
			params[seg.value] = parts[i]
		}
	}

	if len(route.segments) != len(parts) {
		return nil, false
	}
	return params, true
}

// splitPath returns the non-empty '/'-separated parts of path.
func splitPath(path string) []string {
	parts := make([]string, 0, strings.Count(path, "/")+1)
	for path != "" {
		var part string
		part, path, _ = strings.Cut(path, "/")
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// parseQuery splits a query string on '&' and then '='. A key without
// '=' maps to "", later keys overwrite earlier ones, and anything after a
// second '=' is ignored.
func parseQuery(query string) map[string]string {
	values := make(map[string]string)
	for query != "" {
		var pair string
		pair, query, _ = strings.Cut(query, "&")
		if pair == "" {
			continue
		}

		key, rest, _ := strings.Cut(pair, "=")
		value, _, _ := strings.Cut(rest, "=")
		values[key] = value
	}
	return values
}
