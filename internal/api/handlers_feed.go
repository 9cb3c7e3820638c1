// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package api

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/tomtom215/atelier/internal/cache"
	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/diversity"
	"github.com/tomtom215/atelier/internal/metrics"
	"github.com/tomtom215/atelier/internal/models"
	"github.com/tomtom215/atelier/internal/scoring"
	"github.com/tomtom215/atelier/internal/store"
)

// MaxFeedLimit caps the limit a client may request.
const MaxFeedLimit = 200

// FeedRequest selects a feed. Limit 0 uses the configured feed limit.
// Season, when set, scores seasonality for that season instead of today's.
type FeedRequest struct {
	Limit       int                 `json:"limit" validate:"gte=0,lte=200"`
	Source      string              `json:"source,omitempty" validate:"omitempty,sourcename"`
	Season      string              `json:"season,omitempty" validate:"omitempty,season"`
	Preferences *models.Preferences `json:"preferences,omitempty"`
}

// Feed serves GET /api/v1/feed?limit=&source=&season=.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	q := r.URL.Query()
	h.serveFeed(w, r, FeedRequest{Limit: limit, Source: q.Get("source"), Season: q.Get("season")}, start)
}

// FeedPersonalized serves POST /api/v1/feed. The body is a FeedRequest whose
// preferences re-score candidates before selection.
func (h *Handler) FeedPersonalized(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req FeedRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, CodeInvalidBody, err.Error())
		return
	}
	h.serveFeed(w, r, req, start)
}

func (h *Handler) serveFeed(w http.ResponseWriter, r *http.Request, req FeedRequest, start time.Time) {
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if req.Source != "" {
		if _, ok := h.cfg.SourceByName(req.Source); !ok {
			respondError(w, http.StatusBadRequest, CodeUnknownSource, "Unknown source: "+req.Source)
			return
		}
	}

	constraints := diversity.DefaultConstraints(h.cfg.Diversity)
	if req.Limit > 0 {
		constraints.Limit = req.Limit
	}

	candidates, err := h.candidates(r.Context(), req.Source, constraints.Limit)
	if err != nil {
		respondServerError(w, r, http.StatusInternalServerError, CodeQueryFailed, "Failed to load feed candidates", err)
		return
	}

	scorer := h.scorer
	if req.Season != "" {
		season, err := models.ParseSeason(req.Season)
		if err != nil {
			respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}
		scorer = scorer.WithSeason(season)
	}

	personalized := !req.Preferences.Empty() || req.Season != ""
	if personalized {
		rescore(scorer, h.cfg, candidates, req.Preferences)
	}

	feed := h.selector.Select(candidates, constraints)
	score := diversity.Score(feed, constraints.WindowSize)
	metrics.RecordFeed(score, personalized)

	respondData(w, http.StatusOK, models.FeedResponse{
		Products:       feed,
		Count:          len(feed),
		DiversityScore: score,
		Personalized:   personalized,
	}, start)
}

// candidates loads active products by descending score. The pool is never
// smaller than the requested limit. Callers own the returned products.
func (h *Handler) candidates(ctx context.Context, source string, limit int) ([]*models.Product, error) {
	q := store.Query{
		Filter:  store.Filter{Active: store.Bool(true), Source: source},
		OrderBy: store.OrderScoreDesc,
		Limit:   max(h.cfg.Diversity.CandidatePool, limit),
	}
	if h.feedCache == nil {
		return h.store.List(ctx, q)
	}

	key := cache.GenerateKey("feed_candidates", struct {
		Source string
		Limit  int
	}{source, q.Limit})
	if cached, ok := h.feedCache.Get(key); ok {
		metrics.FeedCacheHits.Inc()
		return cloneProducts(cached), nil
	}
	metrics.FeedCacheMisses.Inc()

	list, err := h.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	h.feedCache.Set(key, cloneProducts(list))
	return list, nil
}

// cloneProducts copies products so personalization never rescores cached values.
func cloneProducts(in []*models.Product) []*models.Product {
	out := make([]*models.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

// rescore recomputes recommendation scores with prefs and re-sorts candidates.
// Products of sources no longer configured score with a zero source.
func rescore(scorer *scoring.Scorer, cfg *config.Config, candidates []*models.Product, prefs *models.Preferences) {
	for _, p := range candidates {
		src, _ := cfg.SourceByName(p.Source)
		scorer.Score(p, src, prefs)
	}
	slices.SortStableFunc(candidates, func(a, b *models.Product) int {
		return cmp.Compare(b.RecommendationScore, a.RecommendationScore)
	})
}
