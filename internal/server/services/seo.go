package services

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"github.com/dmitrijs2005/taxportal/internal/logging"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/contents"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	// sitemapMaxArticles caps the article part of the sitemap.
	sitemapMaxArticles = 5000
)

type sitemapPage struct {
	path       string
	changeFreq string
	priority   string
}

var staticPages = []sitemapPage{
	{"/", "daily", "1.0"},
	{"/about-us", "monthly", "0.5"},
	{"/income-tax", "daily", "0.8"},
	{"/gst", "daily", "0.8"},
	{"/mca", "daily", "0.8"},
	{"/sebi", "daily", "0.8"},
	{"/ms-office", "weekly", "0.8"},
}

var robotsDisallow = []string{"/api/", "/admin/", "/submit-article", "/login"}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// SEOService renders sitemap.xml and robots.txt for the public site.
type SEOService struct {
	contents contents.Repository
	baseURL  string
	logger   logging.Logger
	now      func() time.Time
}

func NewSEOService(repo contents.Repository, baseURL string, logger logging.Logger) *SEOService {
	return &SEOService{
		contents: repo,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Sitemap lists the static pages and one entry per article. It never fails:
// when the articles cannot be read the static part is returned alone.
func (s *SEOService) Sitemap(ctx context.Context) []byte {
	today := s.now().Format(time.DateOnly)

	set := urlSet{Xmlns: sitemapNamespace}
	for _, p := range staticPages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.baseURL + p.path,
			LastMod:    today,
			ChangeFreq: p.changeFreq,
			Priority:   p.priority,
		})
	}

	items, err := s.contents.List(ctx, contents.Query{Limit: sitemapMaxArticles})
	if err != nil {
		s.logger.Error(ctx, "sitemap: listing articles failed", "error", err)
	}
	for _, c := range items {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.baseURL + "/article/" + c.ID,
			LastMod:    c.Date.UTC().Format(time.DateOnly),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		s.logger.Error(ctx, "sitemap: encoding failed", "error", err)
		return []byte(xml.Header + `<urlset xmlns="` + sitemapNamespace + `"></urlset>`)
	}
	return append([]byte(xml.Header), out...)
}

func (s *SEOService) Robots() string {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\n")
	for _, p := range robotsDisallow {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + s.baseURL + "/sitemap.xml\n")
	return b.String()
}
