package service

import (
	"encoding/xml"
	"strings"
	"time"
)

// publicRoutes are the static pages reachable without an account.
var publicRoutes = []struct {
	Path       string
	Priority   string
	ChangeFreq string
}{
	{"/", "1.0", "weekly"},
	{"/login", "0.5", "monthly"},
}

type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type SitemapService struct {
	pageService *PageService
	baseURL     string
}

func NewSitemapService(pageService *PageService, baseURL string) *SitemapService {
	return &SitemapService{
		pageService: pageService,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
	}
}

// GenerateSitemap lists the public routes and every content page.
func (s *SitemapService) GenerateSitemap() ([]byte, error) {
	today := time.Now().Format("2006-01-02")
	sitemap := Sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []SitemapURL{},
	}

	for _, route := range publicRoutes {
		sitemap.URLs = append(sitemap.URLs, SitemapURL{
			Loc:        s.baseURL + route.Path,
			LastMod:    today,
			ChangeFreq: route.ChangeFreq,
			Priority:   route.Priority,
		})
	}

	for _, slug := range s.pageService.Slugs() {
		sitemap.URLs = append(sitemap.URLs, SitemapURL{
			Loc:        s.baseURL + "/pages/" + slug,
			LastMod:    today,
			ChangeFreq: "monthly",
			Priority:   "0.3",
		})
	}

	output, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}
	return []byte(xml.Header + string(output)), nil
}
