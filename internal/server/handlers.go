package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"

	"github.com/crypton-club/clubdata/internal/club"
)

type resourceHandler[T club.Record[T]] struct {
	s        *Server
	resource club.Resource
}

func register[T club.Record[T]](s *Server, g *gin.RouterGroup, resource club.Resource) {
	h := &resourceHandler[T]{s: s, resource: resource}
	path := "/" + string(resource)
	g.GET(path, h.list)
	g.POST(path, h.create)
	g.PUT(path+"/:id", h.replace)
	g.DELETE(path+"/:id", h.remove)
}

func (h *resourceHandler[T]) cacheKey() string { return string(h.resource) }

func (h *resourceHandler[T]) list(c *gin.Context) {
	if body, ok := h.s.cache.Get(h.cacheKey()); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", body.([]byte))
		return
	}

	lock := h.s.locks[h.resource]
	lock.RLock()
	defer lock.RUnlock()

	docs, err := h.s.repo.Read(c.Request.Context(), h.resource)
	if err != nil {
		h.fail(c, "read", err)
		return
	}
	body, err := json.Marshal(docs)
	if err != nil {
		h.fail(c, "encode", err)
		return
	}
	h.s.cache.Set(h.cacheKey(), body, cache.DefaultExpiration)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// create accepts a single record, or a whole array that replaces the stored
// resource.
func (h *resourceHandler[T]) create(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable body")
		return
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		h.replaceAll(c, trimmed)
		return
	}

	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if rec.Key().IsZero() {
		rec = rec.WithKey(h.s.ids.NewID())
	}
	if err := rec.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	err = h.mutate(c, func(items []T) ([]T, error) {
		if slices.ContainsFunc(items, func(it T) bool { return it.Key().Matches(rec.Key()) }) {
			return nil, club.ErrDuplicateID
		}
		if h.resource.Prepends() {
			return append([]T{rec}, items...), nil
		}
		return append(items, rec), nil
	})
	switch {
	case errors.Is(err, club.ErrDuplicateID):
		writeError(c, http.StatusConflict, fmt.Sprintf("%s %s already exists", h.resource, rec.Key()))
	case err != nil:
		h.fail(c, "save", err)
	default:
		writeJSON(c, http.StatusCreated, rec)
	}
}

func (h *resourceHandler[T]) replaceAll(c *gin.Context, raw []byte) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		writeJSON(c, http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON body"})
		return
	}
	if items == nil {
		items = []T{}
	}
	// Ids are assigned before validation, as for a single create.
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if it.Key().IsZero() {
			items[i] = it.WithKey(h.s.ids.NewID())
		}
		if err := items[i].Validate(); err != nil {
			writeJSON(c, http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("record %d: %v", i, err)})
			return
		}
		key := items[i].Key().String()
		if seen[key] {
			writeJSON(c, http.StatusBadRequest, gin.H{"success": false, "error": "duplicate id " + key})
			return
		}
		seen[key] = true
	}

	if err := h.mutate(c, func([]T) ([]T, error) { return items, nil }); err != nil {
		h.s.log.Errorw("bulk replace failed", "resource", h.resource, "error", err)
		writeJSON(c, http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save"})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true})
}

func (h *resourceHandler[T]) replace(c *gin.Context) {
	id := club.ID(c.Param("id"))

	var rec T
	if err := json.NewDecoder(c.Request.Body).Decode(&rec); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec = rec.WithKey(id)
	if err := rec.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.mutate(c, func(items []T) ([]T, error) {
		idx := slices.IndexFunc(items, func(it T) bool { return it.Key().Matches(id) })
		if idx < 0 {
			return nil, club.ErrNotFound
		}
		rec = rec.WithKey(items[idx].Key())
		items[idx] = rec
		return items, nil
	})
	switch {
	case errors.Is(err, club.ErrNotFound):
		writeError(c, http.StatusNotFound, fmt.Sprintf("%s %s not found", h.resource, id))
	case err != nil:
		h.fail(c, "update", err)
	default:
		writeJSON(c, http.StatusOK, rec)
	}
}

// remove answers success whether or not the id existed.
func (h *resourceHandler[T]) remove(c *gin.Context) {
	id := club.ID(c.Param("id"))
	err := h.mutate(c, func(items []T) ([]T, error) {
		return slices.DeleteFunc(items, func(it T) bool { return it.Key().Matches(id) }), nil
	})
	if err != nil {
		h.s.log.Errorw("delete failed", "resource", h.resource, "id", id, "error", err)
		writeJSON(c, http.StatusInternalServerError, gin.H{"success": false, "error": "failed to delete"})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true})
}

// mutate runs a read-modify-write of the resource under its lock and drops
// the cached listing.
func (h *resourceHandler[T]) mutate(c *gin.Context, fn func([]T) ([]T, error)) error {
	ctx := c.Request.Context()
	lock := h.s.locks[h.resource]
	lock.Lock()
	defer lock.Unlock()

	docs, err := h.s.repo.Read(ctx, h.resource)
	if err != nil {
		return err
	}
	items, err := decodeDocs[T](docs)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	out, err := encodeDocs(items)
	if err != nil {
		return err
	}
	h.s.cache.Delete(h.cacheKey())
	if err := h.s.repo.Write(ctx, h.resource, out); err != nil {
		return err
	}
	writesTotal.WithLabelValues(string(h.resource)).Inc()
	return nil
}

func (h *resourceHandler[T]) fail(c *gin.Context, action string, err error) {
	h.s.log.Errorw(action+" failed", "resource", h.resource, "error", err)
	writeError(c, http.StatusInternalServerError, "failed to "+action)
}
