package http

import (
	"strings"
	"sync/atomic"
)

type Middleware func(next Handler) Handler

// RouteMatcher maps a method and path to a handler. Entries are unique per
// (method, path); adding a duplicate replaces the handler in place, so
// lookups scan routes in first-registration order.
type RouteMatcher struct {
	routes []Route
	index  map[routeKey]int
}

type routeKey struct {
	method string
	path   string
}

func NewRouteMatcher() *RouteMatcher {
	return &RouteMatcher{
		index: make(map[routeKey]int),
	}
}

func (matcher *RouteMatcher) Add(method, path string, handler Handler) {
	route := newRoute(method, path, handler)
	key := routeKey{method: method, path: path}

	if i, ok := matcher.index[key]; ok {
		matcher.routes[i] = route
		return
	}

	matcher.index[key] = len(matcher.routes)
	matcher.routes = append(matcher.routes, route)
}

// Match resolves url (path plus optional query string) for method. The
// first route matching both the path shape and the method wins.
func (matcher *RouteMatcher) Match(method, url string) (MatchedRoute, bool) {
	path, query, _ := strings.Cut(url, "?")
	parts := splitPath(path)

	for i := range matcher.routes {
		route := &matcher.routes[i]

		params, ok := route.match(parts)
		if !ok {
			continue
		}
		if route.Method != method && route.Method != MethodAny {
			continue
		}

		return MatchedRoute{
			Method:  route.Method,
			Path:    route.Path,
			Handler: route.Handler,
			Params:  params,
			Query:   parseQuery(query),
		}, true
	}

	return MatchedRoute{}, false
}

func (matcher *RouteMatcher) Routes() []Route {
	return matcher.routes
}

func (matcher *RouteMatcher) Len() int {
	return len(matcher.routes)
}

// Router is the registration surface of a server. Groups share the
// routes of the router they were created from.
type Router struct {
	// NotFound answers requests no route matched. Nil means an empty 404.
	NotFound Handler

	matcher    *RouteMatcher
	prefix     string
	groupMw    []Middleware
	middleware *[]Middleware
	frozen     *atomic.Bool
}

func NewRouter() *Router {
	return &Router{
		matcher:    NewRouteMatcher(),
		middleware: &[]Middleware{},
		frozen:     &atomic.Bool{},
	}
}

func (router *Router) GET(path string, handler Handler, middleware ...Middleware) {
	router.Handle(MethodGet, path, handler, middleware...)
}

func (router *Router) HEAD(path string, handler Handler, middleware ...Middleware) {
	router.Handle(MethodHead, path, handler, middleware...)
}

func (router *Router) POST(path string, handler Handler, middleware ...Middleware) {
	router.Handle(MethodPost, path, handler, middleware...)
}

func (router *Router) PUT(path string, handler Handler, middleware ...Middleware) {
	router.Handle(MethodPut, path, handler, middleware...)
}

func (router *Router) PATCH(path string, handler Handler, middleware ...Middleware) {
	router.Handle(MethodPatch, path, handler, middleware...)
}

func (router *Router) DELETE(path string, handler Handler, middleware ...Middleware) {
	router.Handle(MethodDelete, path, handler, middleware...)
}

func (router *Router) CONNECT(path string, handler Handler, middleware ...Middleware) {
	router.Handle(MethodConnect, path, handler, middleware...)
}

func (router *Router) OPTIONS(path string, handler Handler, middleware ...Middleware) {
	router.Handle(MethodOptions, path, handler, middleware...)
}

func (router *Router) TRACE(path string, handler Handler, middleware ...Middleware) {
	router.Handle(MethodTrace, path, handler, middleware...)
}

// Any registers handler for every method.
func (router *Router) Any(path string, handler Handler, middleware ...Middleware) {
	router.Handle(MethodAny, path, handler, middleware...)
}

// Handle registers handler for method and path. Route middleware runs
// inside group middleware; the first middleware given is the outermost.
// It panics once the router has been frozen by a server.
func (router *Router) Handle(method, path string, handler Handler, middleware ...Middleware) {
	if router.frozen.Load() {
		panic(ErrRouterFrozen)
	}

	handler = chain(handler, middleware)
	handler = chain(handler, router.groupMw)

	router.matcher.Add(method, router.prefix+path, handler)
}

func (router *Router) Group(path string, groupFunc func(group *Router), middleware ...Middleware) {
	group := &Router{
		matcher:    router.matcher,
		prefix:     router.prefix + path,
		groupMw:    append(append([]Middleware{}, router.groupMw...), middleware...),
		middleware: router.middleware,
		frozen:     router.frozen,
	}

	groupFunc(group)
}

// Use adds middleware wrapping every route and the not found handler.
func (router *Router) Use(middleware ...Middleware) {
	if router.frozen.Load() {
		panic(ErrRouterFrozen)
	}
	*router.middleware = append(*router.middleware, middleware...)
}

// freeze stops further registration and snapshots the routes with the
// global middleware applied.
func (router *Router) freeze() *routeTable {
	router.frozen.Store(true)

	table := &routeTable{
		matcher:  NewRouteMatcher(),
		notFound: router.NotFound,
	}
	if table.notFound == nil {
		table.notFound = notFoundHandler
	}

	mw := *router.middleware
	for _, route := range router.matcher.routes {
		table.matcher.Add(route.Method, route.Path, chain(route.Handler, mw))
	}
	table.notFound = chain(table.notFound, mw)

	return table
}

// chain wraps handler so that middleware[0] runs first.
func chain(handler Handler, middleware []Middleware) Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	return handler
}

func notFoundHandler(req *Request, res *Response) error {
	res.WithStatus(StatusNotFound, "Not Found")
	return nil
}

// routeTable is the read-only route snapshot shared by all connections of
// a running server.
type routeTable struct {
	matcher  *RouteMatcher
	notFound Handler
}

// resolve fills the route fields of req and returns its handler.
func (table *routeTable) resolve(req *Request) Handler {
	matched, ok := table.matcher.Match(req.method, req.url)
	if !ok {
		return table.notFound
	}

	req.route = matched.Path
	req.params = matched.Params
	req.query = matched.Query
	return matched.Handler
}
