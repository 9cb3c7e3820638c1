// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package testinfra

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atelier/internal/models"
)

// CatalogServer fakes the item-search API. Items are keyed by the shopCode
// parameter, or by keyword when no shop code is sent.
type CatalogServer struct {
	*httptest.Server

	mu        sync.Mutex
	items     map[string][]models.RawItem
	failNext  []int
	failPages map[string]int
	requests  []url.Values
}

// NewCatalogServer starts a CatalogServer. Close it when done.
func NewCatalogServer() *CatalogServer {
	s := &CatalogServer{
		items:     make(map[string][]models.RawItem),
		failPages: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// AddItems appends items served for key.
func (s *CatalogServer) AddItems(key string, items ...models.RawItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append(s.items[key], items...)
}

// FailNext answers the next len(statuses) requests with those status codes.
func (s *CatalogServer) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, statuses...)
}

// FailPage always answers page of key with status.
func (s *CatalogServer) FailPage(key string, page, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPages[pageKey(key, page)] = status
}

// Requests returns a copy of the query strings received so far.
func (s *CatalogServer) Requests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.requests...)
}

// RequestsFor counts requests made for key.
func (s *CatalogServer) RequestsFor(key string) int {
	n := 0
	for _, q := range s.Requests() {
		if requestKey(q) == key {
			n++
		}
	}
	return n
}

func pageKey(key string, page int) string {
	return key + "#" + strconv.Itoa(page)
}

func requestKey(q url.Values) string {
	if code := q.Get("shopCode"); code != "" {
		return code
	}
	return q.Get("keyword")
}

func (s *CatalogServer) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := requestKey(q)
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	hits, _ := strconv.Atoi(q.Get("hits"))
	if hits < 1 {
		hits = 30
	}

	s.mu.Lock()
	s.requests = append(s.requests, q)
	status := 0
	if len(s.failNext) > 0 {
		status, s.failNext = s.failNext[0], s.failNext[1:]
	} else if st, ok := s.failPages[pageKey(key, page)]; ok {
		status = st
	}
	all := s.items[key]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(models.SearchResponse{
			Error:            http.StatusText(status),
			ErrorDescription: fmt.Sprintf("injected %d", status),
		})
		return
	}

	pageCount := (len(all) + hits - 1) / hits
	start := min((page-1)*hits, len(all))
	end := min(start+hits, len(all))
	_ = json.NewEncoder(w).Encode(models.SearchResponse{
		Count:     len(all),
		Page:      page,
		First:     start + 1,
		Last:      end,
		Hits:      end - start,
		PageCount: pageCount,
		Items:     all[start:end],
	})
}

// Item returns a valid upstream item for shop with the given code and price.
func Item(shop, code string, price int) models.RawItem {
	return models.RawItem{
		ItemName:        "コットン ワンピース " + code,
		ItemCode:        shop + ":" + code,
		ItemPrice:       price,
		ItemCaption:     "カジュアル",
		ItemURL:         "https://item.rakuten.co.jp/" + shop + "/" + code + "/",
		ShopName:        shop,
		ShopCode:        shop,
		MediumImageURLs: models.ImageURLs{"https://thumbnail.image.rakuten.co.jp/@0_mall/" + shop + "/" + code + ".jpg"},
		ReviewCount:     12,
		ReviewAverage:   4.2,
		GenreID:         "100371",
		Availability:    1,
	}
}
