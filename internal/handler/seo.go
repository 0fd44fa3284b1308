package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/pixaro/internal/service"
)

type SEOHandler struct {
	sitemapService *service.SitemapService
	baseURL        string
}

func NewSEOHandler(pageService *service.PageService, baseURL string) *SEOHandler {
	return &SEOHandler{
		sitemapService: service.NewSitemapService(pageService, baseURL),
		baseURL:        strings.TrimRight(baseURL, "/"),
	}
}

// Robots keeps crawlers out of the logged in area
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	body := "User-agent: *\n" +
		"Allow: /\n" +
		"Disallow: /feed\n" +
		"Disallow: /profile\n" +
		"Disallow: /user/\n" +
		"Sitemap: " + h.baseURL + "/sitemap.xml\n"

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(body))
	if err != nil {
		slog.Error("failed to write robots.txt", "error", err)
	}
}

func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	sitemap, err := h.sitemapService.GenerateSitemap()
	if err != nil {
		slog.Error("failed to generate sitemap", "error", err)
		http.Error(w, "Failed to generate sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, err = w.Write(sitemap)
	if err != nil {
		slog.Error("failed to write sitemap", "error", err)
	}
}
