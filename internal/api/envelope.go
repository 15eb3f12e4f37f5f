package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

// unwrap decodes either {"data": X} or a bare X into out.
func unwrap(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
			return json.Unmarshal(env.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}

type pageMeta struct {
	Page        int `json:"page"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
	Total       int `json:"total"`
	TotalDocs   int `json:"totalDocs"`
	TotalPages  int `json:"totalPages"`
	Pages       int `json:"pages"`
}

func (m pageMeta) merge(other pageMeta) pageMeta {
	if m.Page == 0 {
		m.Page = firstPositive(other.Page, other.CurrentPage)
	}
	if m.Limit == 0 {
		m.Limit = other.Limit
	}
	if m.Total == 0 {
		m.Total = firstPositive(other.Total, other.TotalDocs)
	}
	if m.TotalPages == 0 {
		m.TotalPages = firstPositive(other.TotalPages, other.Pages)
	}
	return m
}

type pageWire struct {
	pageMeta
	Data       json.RawMessage `json:"data"`
	Items      json.RawMessage `json:"items"`
	Docs       json.RawMessage `json:"docs"`
	Results    json.RawMessage `json:"results"`
	Pagination *pageMeta       `json:"pagination"`
	Meta       *pageMeta       `json:"meta"`
}

// decodePage normalizes the list envelopes the API uses into one Page.
// requested carries the page/limit that were asked for, used when the
// server does not echo them.
func decodePage[T any](raw []byte, requested pageMeta) (models.Page[T], error) {
	list, meta, err := findList(bytes.TrimSpace(raw), pageMeta{})
	if err != nil {
		return models.Page[T]{}, err
	}

	var items []T
	if len(list) > 0 {
		if err := json.Unmarshal(list, &items); err != nil {
			return models.Page[T]{}, err
		}
	}
	if items == nil {
		items = []T{}
	}

	meta = meta.merge(requested)
	if meta.Page == 0 {
		meta.Page = 1
	}
	if meta.Total == 0 {
		meta.Total = len(items)
	}
	if meta.TotalPages == 0 {
		meta.TotalPages = 1
		if meta.Limit > 0 && meta.Total > meta.Limit {
			meta.TotalPages = (meta.Total + meta.Limit - 1) / meta.Limit
		}
	}

	return models.Page[T]{
		Items:      items,
		Page:       meta.Page,
		Limit:      meta.Limit,
		Total:      meta.Total,
		TotalPages: meta.TotalPages,
	}, nil
}

func findList(raw []byte, outer pageMeta) (json.RawMessage, pageMeta, error) {
	if len(raw) == 0 {
		return nil, outer, nil
	}
	if raw[0] == '[' {
		return raw, outer, nil
	}

	var w pageWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, outer, fmt.Errorf("decode page: %w", err)
	}
	meta := outer.merge(w.pageMeta)
	if w.Pagination != nil {
		meta = meta.merge(*w.Pagination)
	}
	if w.Meta != nil {
		meta = meta.merge(*w.Meta)
	}

	for _, candidate := range []json.RawMessage{w.Items, w.Docs, w.Results} {
		if len(candidate) > 0 && candidate[0] == '[' {
			return candidate, meta, nil
		}
	}
	if len(w.Data) > 0 && string(w.Data) != "null" {
		return findList(bytes.TrimSpace(w.Data), meta)
	}

	// named collections such as {"listings": [...], "pagination": {...}}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, meta, fmt.Errorf("decode page: %w", err)
	}
	var named json.RawMessage
	for _, v := range fields {
		v = bytes.TrimSpace(v)
		if len(v) == 0 || v[0] != '[' {
			continue
		}
		if named != nil {
			return nil, meta, fmt.Errorf("decode page: ambiguous list envelope")
		}
		named = v
	}
	return named, meta, nil
}

// GetPage fetches one page of a paginated collection. It is a function
// because methods cannot take type parameters.
func GetPage[T any](ctx context.Context, s *Session, path string, query url.Values) (models.Page[T], error) {
	requested := pageMeta{}
	if query != nil {
		requested.Page, _ = strconv.Atoi(query.Get("page"))
		requested.Limit, _ = strconv.Atoi(query.Get("limit"))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	raw, err := s.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return models.Page[T]{}, err
	}
	page, err := decodePage[T](raw, requested)
	if err != nil {
		return models.Page[T]{}, fmt.Errorf("decode GET %s: %w", path, err)
	}
	return page, nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
