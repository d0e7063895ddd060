package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/logging"
	"github.com/abelbrown/newshub/internal/model"
)

type articlePage struct {
	Articles []model.Article `json:"articles"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	HasMore  bool            `json:"hasMore"`
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func queryOr(r *http.Request, key, def string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		return v
	}
	return def
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	filters := model.Filters{
		Category: queryOr(r, "category", model.CategoryGeneral),
		Country:  queryOr(r, "country", "us"),
		Query:    queryOr(r, "q", ""),
	}
	page := pageParam(r)

	res, _ := s.cache.fetch(r.Context(), s.fetcher, filters, page)
	if !res.Success {
		logging.Error("article fetch failed", "category", filters.Category, "page", page, "error", res.Err)
		fail(w, http.StatusInternalServerError, "Failed to fetch news from external API")
		return
	}
	ok(w, http.StatusOK, "", articlePage{
		Articles: res.Articles,
		Total:    len(res.Articles),
		Page:     page,
		HasMore:  res.HasMore,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		ok(w, http.StatusOK, "", articlePage{Articles: []model.Article{}, Page: 1})
		return
	}
	page := pageParam(r)

	res, _ := s.cache.fetch(r.Context(), s.fetcher, model.Filters{Query: q}, page)
	if !res.Success {
		logging.Error("search failed", "q", q, "error", res.Err)
		fail(w, http.StatusInternalServerError, "Search failed")
		return
	}
	ok(w, http.StatusOK, "", articlePage{
		Articles: res.Articles,
		Total:    len(res.Articles),
		Page:     page,
		HasMore:  res.HasMore,
	})
}

func (s *Server) handleFeedXML(w http.ResponseWriter, r *http.Request) {
	filters := model.Filters{
		Category: queryOr(r, "category", model.CategoryGeneral),
		Country:  queryOr(r, "country", "us"),
		Query:    queryOr(r, "q", ""),
	}

	res, _ := s.cache.fetch(r.Context(), s.fetcher, filters, 1)
	if !res.Success {
		http.Error(w, fetch.UserMessage, http.StatusBadGateway)
		return
	}

	rss, err := GenerateRSSFeed(res.Articles, filters, s.opts.FeedLink)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}
