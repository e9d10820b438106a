package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/xhad/minirag/internal/models"
	"golang.org/x/time/rate"
)

type ScraperConfig struct {
	BaseURL           string
	MaxDepth          int
	RateLimit         float64 // requests per second
	IgnorePatterns    []string
	AllowedExtensions []string
	Timeout           time.Duration
	OnProgress        func(url string)
}

// Scraper crawls a documentation site and turns its pages into corpus
// documents.
type Scraper struct {
	config   ScraperConfig
	client   *http.Client
	visited  map[string]bool
	limiter  *rate.Limiter
	baseHost string
}

func NewWithConfig(config ScraperConfig) (*Scraper, error) {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxDepth == 0 {
		config.MaxDepth = 3
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if len(config.AllowedExtensions) == 0 {
		config.AllowedExtensions = []string{".html", ".htm", "/", ""}
	}

	parsedURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		visited:  make(map[string]bool),
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		baseHost: parsedURL.Host,
	}, nil
}

func New(baseURL string) *Scraper {
	s, _ := NewWithConfig(ScraperConfig{
		BaseURL: baseURL,
	})
	return s
}

// Scrape crawls the site starting at url and returns one document per
// page.
func (s *Scraper) Scrape(url string) ([]models.Document, error) {
	var documents []models.Document
	err := s.scrapeRecursive(url, 0, &documents)
	return documents, err
}

// SaveTo writes scraped documents into the docs directory as .txt
// files so the local pipeline can index them.
func (s *Scraper) SaveTo(docsDir string, documents []models.Document) ([]string, error) {
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %q: %v", docsDir, err)
	}

	var saved []string
	for _, doc := range documents {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		path := filepath.Join(docsDir, doc.Filename)
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return saved, fmt.Errorf("failed to write %s: %v", path, err)
		}
		saved = append(saved, path)
	}

	return saved, nil
}

func (s *Scraper) scrapeRecursive(urlStr string, depth int, documents *[]models.Document) error {
	if depth > s.config.MaxDepth || s.visited[urlStr] {
		return nil
	}

	if !s.shouldProcessURL(urlStr) {
		return nil
	}

	s.visited[urlStr] = true
	if s.config.OnProgress != nil {
		s.config.OnProgress(urlStr)
	}

	// Apply rate limiting
	if err := s.limiter.Wait(context.Background()); err != nil {
		return err
	}

	resp, err := s.client.Get(urlStr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return err
	}

	content := s.extractMainContent(doc)
	title := strings.TrimSpace(doc.Find("title").Text())

	document := models.Document{
		Filename: filenameFor(urlStr),
		Content:  content,
		Metadata: map[string]interface{}{
			"url":          urlStr,
			"title":        title,
			"depth":        depth,
			"time":         time.Now(),
			"contentType":  resp.Header.Get("Content-Type"),
			"lastModified": resp.Header.Get("Last-Modified"),
		},
	}
	*documents = append(*documents, document)

	// Find and follow links
	var links []string
	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, exists := selection.Attr("href")
		if !exists {
			return
		}

		absoluteURL, err := url.Parse(href)
		if err != nil {
			return
		}

		if !absoluteURL.IsAbs() {
			base, err := url.Parse(urlStr)
			if err != nil {
				return
			}
			absoluteURL = base.ResolveReference(absoluteURL)
		}

		links = append(links, absoluteURL.String())
	})

	for _, link := range links {
		if err := s.scrapeRecursive(link, depth+1, documents); err != nil {
			// Keep going; a single bad page should not abort the crawl
			continue
		}
	}

	return nil
}

func (s *Scraper) shouldProcessURL(urlStr string) bool {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	// Check if URL is from the same host
	if parsedURL.Host != s.baseHost {
		return false
	}

	// Check extensions
	path := strings.ToLower(parsedURL.Path)
	validExt := false
	for _, allowedExt := range s.config.AllowedExtensions {
		if strings.HasSuffix(path, allowedExt) {
			validExt = true
			break
		}
	}
	if !validExt {
		return false
	}

	// Check ignore patterns
	for _, pattern := range s.config.IgnorePatterns {
		if strings.Contains(urlStr, pattern) {
			return false
		}
	}

	return true
}

func (s *Scraper) cleanContent(content string) string {
	// Remove extra whitespace
	content = strings.Join(strings.Fields(content), " ")

	// Remove common noise
	noisePatterns := []string{
		"Cookie Policy",
		"Accept Cookies",
		"Privacy Policy",
		"Terms of Service",
	}

	for _, pattern := range noisePatterns {
		content = strings.ReplaceAll(content, pattern, "")
	}

	return strings.TrimSpace(content)
}

func (s *Scraper) extractMainContent(doc *goquery.Document) string {
	// Try to find main content area
	selectors := []string{
		"main",
		"article",
		".content",
		"#content",
		".documentation",
		"#documentation",
	}

	var content string
	for _, selector := range selectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = selected.Text()
			break
		}
	}

	// Fallback to body if no main content found
	if content == "" {
		content = doc.Find("body").Text()
	}

	return s.cleanContent(content)
}

// filenameFor derives a stable corpus filename from a page URL.
func filenameFor(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "page.txt"
	}

	name := strings.Trim(parsed.Path, "/")
	if name == "" {
		name = "index"
	}

	name = strings.TrimSuffix(name, ".html")
	name = strings.TrimSuffix(name, ".htm")

	replacer := strings.NewReplacer("/", "_", ".", "_", "?", "_", "&", "_", "=", "_")
	return replacer.Replace(name) + ".txt"
}
