// handlers/deps.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"assetmgt/lifecycle"
	"assetmgt/store"
	"assetmgt/views"
)

var (
	st      *store.Store
	engine  *lifecycle.Engine
	logger  = zap.NewNop()
	hubOnce sync.Once
)

// Init wires the repositories and the lifecycle engine into the handler
// package and connects the engine's history hook to the websocket hub.
func Init(s *store.Store, e *lifecycle.Engine, l *zap.Logger) {
	st = s
	engine = e
	if l != nil {
		logger = l
	}
	engine.SetRecorder(BroadcastHistory)
	hubOnce.Do(func() {
		go hub.Run()
	})
}

// parseListQuery reads the common pipeline inputs of every list endpoint.
// Clients echo the inputs of the page they are on as prevSearch, prevSort,
// prevDir and prev<Filter> params; when any input differs from its echo the
// page resets to 1.
func parseListQuery(r *http.Request, filterKeys ...string) views.Query {
	params := r.URL.Query()
	q := views.Query{
		Search:  params.Get("search"),
		Sort:    params.Get("sort"),
		Dir:     parseDir(params.Get("dir")),
		Filters: map[string]string{},
	}
	if page, err := strconv.Atoi(params.Get("page")); err == nil {
		q.Page = page
	}
	prev := views.Query{
		Search:  params.Get("prevSearch"),
		Sort:    params.Get("prevSort"),
		Dir:     parseDir(params.Get("prevDir")),
		Page:    q.Page,
		Filters: map[string]string{},
	}
	for _, key := range filterKeys {
		if v := params.Get(key); v != "" {
			q.Filters[key] = v
		}
		if v := params.Get("prev" + strings.ToUpper(key[:1]) + key[1:]); v != "" {
			prev.Filters[key] = v
		}
	}
	return q.Normalize(prev)
}

func parseDir(v string) views.Direction {
	if views.Direction(v) == views.Descending {
		return views.Descending
	}
	return views.Ascending
}
