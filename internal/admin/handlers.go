package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/omeyang/shopcache/pkg/observability/xlog"
	"github.com/omeyang/shopcache/pkg/storage/xcache"
)

const (
	defaultKeyLimit = 100
	maxKeyLimit     = 10000
)

type errorBody struct {
	Error string `json:"error"`
}

type healthBody struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Caches int    `json:"caches"`
}

type removedBody struct {
	Cache   string `json:"cache"`
	Pattern string `json:"pattern,omitempty"`
	Removed int    `json:"removed"`
}

type keysBody struct {
	Cache     string   `json:"cache"`
	Keys      []string `json:"keys"`
	Total     int      `json:"total"`
	Truncated bool     `json:"truncated"`
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	body := healthBody{Status: "ok"}
	if s.deps.Registry != nil {
		body.Caches = len(s.deps.Registry.Names())
	}
	if s.deps.Health != nil {
		if err := s.deps.Health(r.Context()); err != nil {
			body.Status = "degraded"
			body.Error = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *server) handleListCaches(w http.ResponseWriter, _ *http.Request) {
	stats := []xcache.Stats{}
	if s.deps.Registry != nil {
		stats = append(stats, s.deps.Registry.Stats()...)
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *server) handleGetCache(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cache(w, chi.URLParam(r, "name"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Size())
}

func (s *server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cache(w, chi.URLParam(r, "name"))
	if !ok {
		return
	}
	n := c.Size().Entries
	c.Clear()
	s.logger.Info(r.Context(), "cache cleared by admin", xlog.Cache(c.Name()), xlog.Count(int64(n)))
	writeJSON(w, http.StatusOK, removedBody{Cache: c.Name(), Removed: n})
}

func (s *server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cache(w, chi.URLParam(r, "name"))
	if !ok {
		return
	}
	m, err := matcherFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if m == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "glob or prefix is required"})
		return
	}
	n := c.InvalidatePattern(m)
	s.logger.Info(r.Context(), "cache invalidated by admin",
		xlog.Cache(c.Name()), xlog.Reason(m.String()), xlog.Count(int64(n)))
	writeJSON(w, http.StatusOK, removedBody{Cache: c.Name(), Pattern: m.String(), Removed: n})
}

func (s *server) handleKeys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, ok := s.cache(w, q.Get("cache"))
	if !ok {
		return
	}
	m, err := matcherFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	limit := defaultKeyLimit
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxKeyLimit {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be in [1, 10000]"})
			return
		}
	}

	body := keysBody{Cache: c.Name(), Keys: []string{}}
	for _, k := range c.Keys() {
		if m != nil && !m.Match(k) {
			continue
		}
		body.Total++
		if len(body.Keys) < limit {
			body.Keys = append(body.Keys, k)
		}
	}
	body.Truncated = body.Total > len(body.Keys)
	writeJSON(w, http.StatusOK, body)
}

// cache 解析实例名，未找到时写 404。
func (s *server) cache(w http.ResponseWriter, name string) (*xcache.Cache, bool) {
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "cache name is required"})
		return nil, false
	}
	if s.deps.Registry == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "cache not found"})
		return nil, false
	}
	c, ok := s.deps.Registry.Cache(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "cache not found"})
		return nil, false
	}
	return c, true
}

// matcherFromQuery 按 glob 或 prefix 查询参数构造匹配器，两者都为空时返回 nil。
func matcherFromQuery(r *http.Request) (xcache.Matcher, error) {
	q := r.URL.Query()
	glob, prefix := q.Get("glob"), q.Get("prefix")
	switch {
	case glob != "" && prefix != "":
		return nil, errors.New("glob and prefix are mutually exclusive")
	case glob != "":
		return xcache.Glob(glob)
	case prefix != "":
		return xcache.Prefix(prefix), nil
	}
	return nil, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
