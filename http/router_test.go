package http

import (
	"errors"
	"testing"

	"github.com/freekieb7/nano/test"
)

func handlerNamed(name string) Handler {
	return func(req *Request, res *Response) error {
		return res.Send(name)
	}
}

func nameOf(t *testing.T, h Handler) string {
	t.Helper()

	res := NewResponse()
	test.AssertNoError(t, h(&Request{}, res))
	return res.text
}

func TestMatchParamsAndQuery(t *testing.T) {
	matcher := NewRouteMatcher()
	matcher.Add(MethodGet, "/user/:id", handlerNamed("user"))

	matched, ok := matcher.Match(MethodGet, "/user/42?x=1")
	test.AssertTrue(t, ok, "expected a match")
	test.AssertEqual(t, "user", nameOf(t, matched.Handler))
	test.AssertEqual(t, "/user/:id", matched.Path)
	test.AssertEqual(t, "42", matched.Params["id"])
	test.AssertEqual(t, "1", matched.Query["x"])
}

func TestMatchMultipleParams(t *testing.T) {
	matcher := NewRouteMatcher()
	matcher.Add(MethodGet, "/org/:org/repo/:repo", handlerNamed("repo"))

	matched, ok := matcher.Match(MethodGet, "/org/acme/repo/nano")
	test.AssertTrue(t, ok, "expected a match")
	test.AssertEqual(t, 2, len(matched.Params))
	test.AssertEqual(t, "acme", matched.Params["org"])
	test.AssertEqual(t, "nano", matched.Params["repo"])
}

func TestMatchSegmentCount(t *testing.T) {
	matcher := NewRouteMatcher()
	matcher.Add(MethodGet, "/a/b", handlerNamed("ab"))

	_, ok := matcher.Match(MethodGet, "/a")
	test.AssertTrue(t, !ok, "fewer segments must not match")

	_, ok = matcher.Match(MethodGet, "/a/b/c")
	test.AssertTrue(t, !ok, "more segments must not match")

	_, ok = matcher.Match(MethodGet, "/A/b")
	test.AssertTrue(t, !ok, "literals are case sensitive")

	_, ok = matcher.Match(MethodGet, "//a///b/")
	test.AssertTrue(t, ok, "empty segments are ignored")
}

func TestMatchWildcard(t *testing.T) {
	matcher := NewRouteMatcher()
	matcher.Add(MethodGet, "/static/*", handlerNamed("static"))

	for _, url := range []string{"/static", "/static/app.js", "/static/css/site/main.css?v=3"} {
		_, ok := matcher.Match(MethodGet, url)
		test.AssertTrue(t, ok, "expected wildcard match for "+url)
	}

	_, ok := matcher.Match(MethodGet, "/other/app.js")
	test.AssertTrue(t, !ok, "prefix must still match")
}

func TestMatchMethod(t *testing.T) {
	matcher := NewRouteMatcher()
	matcher.Add(MethodPost, "/items", handlerNamed("post"))
	matcher.Add(MethodAny, "/any", handlerNamed("any"))

	_, ok := matcher.Match(MethodGet, "/items")
	test.AssertTrue(t, !ok, "method mismatch must not match")

	for _, method := range []string{MethodGet, MethodPost, "PURGE"} {
		matched, ok := matcher.Match(method, "/any")
		test.AssertTrue(t, ok, "wildcard method must match "+method)
		test.AssertEqual(t, "any", nameOf(t, matched.Handler))
	}
}

func TestMatchFallsThroughMethodMismatch(t *testing.T) {
	matcher := NewRouteMatcher()
	matcher.Add(MethodPost, "/items/:id", handlerNamed("post"))
	matcher.Add(MethodGet, "/items/:id", handlerNamed("get"))

	matched, ok := matcher.Match(MethodGet, "/items/7")
	test.AssertTrue(t, ok, "expected a match")
	test.AssertEqual(t, "get", nameOf(t, matched.Handler))
}

func TestMatchRegistrationOrder(t *testing.T) {
	matcher := NewRouteMatcher()
	matcher.Add(MethodGet, "/files/:name", handlerNamed("param"))
	matcher.Add(MethodGet, "/files/readme", handlerNamed("static"))

	matched, _ := matcher.Match(MethodGet, "/files/readme")
	test.AssertEqual(t, "param", nameOf(t, matched.Handler))
}

func TestMatchDuplicateReplaces(t *testing.T) {
	matcher := NewRouteMatcher()
	matcher.Add(MethodGet, "/a/:x", handlerNamed("first"))
	matcher.Add(MethodGet, "/a/b", handlerNamed("static"))
	matcher.Add(MethodGet, "/a/:x", handlerNamed("second"))

	test.AssertEqual(t, 2, matcher.Len())

	matched, _ := matcher.Match(MethodGet, "/a/b")
	test.AssertEqual(t, "second", nameOf(t, matched.Handler))
}

func TestMatchMiss(t *testing.T) {
	matcher := NewRouteMatcher()

	_, ok := matcher.Match(MethodGet, "/nope")
	test.AssertTrue(t, !ok, "empty table must not match")

	matcher.Add(MethodGet, "/yes", handlerNamed("yes"))
	_, ok = matcher.Match(MethodGet, "/nope")
	test.AssertTrue(t, !ok, "unrelated path must not match")
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		query string
		want  map[string]string
	}{
		{"", map[string]string{}},
		{"a=1&b=2", map[string]string{"a": "1", "b": "2"}},
		{"a=1&a=2", map[string]string{"a": "2"}},
		{"flag", map[string]string{"flag": ""}},
		{"a=1=2", map[string]string{"a": "1"}},
		{"&&a=1&", map[string]string{"a": "1"}},
		{"=v", map[string]string{"": "v"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := parseQuery(tt.query)
			test.AssertEqual(t, len(tt.want), len(got))
			for k, v := range tt.want {
				test.AssertEqual(t, v, got[k])
			}
		})
	}
}

func TestRouterGroupAndMiddleware(t *testing.T) {
	var order []string
	trace := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(req *Request, res *Response) error {
				order = append(order, name)
				return next(req, res)
			}
		}
	}

	router := NewRouter()
	router.Use(trace("global"))
	router.Group("/api", func(api *Router) {
		api.GET("/users/:id", func(req *Request, res *Response) error {
			order = append(order, "handler")
			return nil
		}, trace("route"))
	}, trace("group"))

	table := router.freeze()

	req := &Request{method: MethodGet, url: "/api/users/9", path: "/api/users/9"}
	handler := table.resolve(req)
	test.AssertNoError(t, handler(req, NewResponse()))

	test.AssertEqual(t, "/api/users/:id", req.Route())
	test.AssertEqual(t, "9", req.Param("id"))
	test.AssertEqual(t, 4, len(order))
	test.AssertEqual(t, "global", order[0])
	test.AssertEqual(t, "group", order[1])
	test.AssertEqual(t, "route", order[2])
	test.AssertEqual(t, "handler", order[3])
}

func TestRouterNotFound(t *testing.T) {
	router := NewRouter()
	table := router.freeze()

	req := &Request{method: MethodPost, url: "/missing", path: "/missing"}
	res := NewResponse()
	test.AssertNoError(t, table.resolve(req)(req, res))

	test.AssertEqual(t, StatusNotFound, res.StatusCode())
	test.AssertEqual(t, 0, res.bodyLen())
	test.AssertEqual(t, "", req.Route())
}

func TestRouterFrozen(t *testing.T) {
	router := NewRouter()
	router.freeze()

	defer func() {
		r := recover()
		err, ok := r.(error)
		test.AssertTrue(t, ok && errors.Is(err, ErrRouterFrozen), "expected ErrRouterFrozen panic")
	}()

	router.GET("/late", handlerNamed("late"))
}

func BenchmarkMatch(b *testing.B) {
	matcher := NewRouteMatcher()
	matcher.Add(MethodGet, "/", handlerNamed("root"))
	matcher.Add(MethodGet, "/user/:id", handlerNamed("user"))
	matcher.Add(MethodGet, "/product/:name", handlerNamed("product"))
	matcher.Add(MethodPost, "/settings", handlerNamed("settings"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := matcher.Match(MethodGet, "/product/shoe?color=red"); !ok {
			b.Fatal("expected a match")
		}
	}
}
