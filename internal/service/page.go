package service

import (
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/templui/pixaro/internal/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrPageNotFound = errors.New("page not found")

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

type Page struct {
	Title       string
	Description string
	Slug        string
	Content     template.HTML
	LastUpdated string
}

// PageService serves the markdown pages in CONTENT_PATH/pages.
type PageService struct {
	contentDir string
	reload     bool
	renderer   *markdown.PageRenderer

	mu    sync.RWMutex
	pages map[string]*Page
}

// NewPageService creates the service. With reload set, every lookup reads
// the directory again so content edits show up without a restart.
func NewPageService(contentDir string, reload bool) *PageService {
	return &PageService{
		contentDir: filepath.Join(contentDir, "pages"),
		reload:     reload,
		renderer:   markdown.NewPageRenderer(),
		pages:      make(map[string]*Page),
	}
}

func (s *PageService) LoadPages() error {
	files, err := os.ReadDir(s.contentDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read pages directory: %w", err)
	}

	pages := make(map[string]*Page)
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}

		slug := strings.TrimSuffix(file.Name(), ".md")
		if !slugPattern.MatchString(slug) {
			continue
		}

		page, err := s.loadPage(slug)
		if err != nil {
			return fmt.Errorf("failed to load page %s: %w", slug, err)
		}
		pages[slug] = page
	}

	s.mu.Lock()
	s.pages = pages
	s.mu.Unlock()
	return nil
}

func (s *PageService) loadPage(slug string) (*Page, error) {
	filePath := filepath.Join(s.contentDir, slug+".md")
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := s.renderer.Render(content)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	title := doc.Meta.Title
	if title == "" {
		title = cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
	}

	lastUpdated := formatDate(doc.Meta.LastUpdated)
	if lastUpdated == "" {
		lastUpdated = info.ModTime().Format(pageDateLayout)
	}

	return &Page{
		Title:       title,
		Description: doc.Meta.Description,
		Slug:        slug,
		Content:     doc.HTML,
		LastUpdated: lastUpdated,
	}, nil
}

func (s *PageService) Page(slug string) (*Page, error) {
	if !slugPattern.MatchString(slug) {
		return nil, ErrPageNotFound
	}

	if s.reload {
		err := s.LoadPages()
		if err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}
	return page, nil
}

// Slugs lists the loaded pages in alphabetical order.
func (s *PageService) Slugs() []string {
	if s.reload {
		_ = s.LoadPages()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	slugs := make([]string, 0, len(s.pages))
	for slug := range s.pages {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

const pageDateLayout = "January 2, 2006"

var frontmatterDateLayouts = []string{"2006-01-02", "2006/01/02", "02.01.2006", "Jan 2, 2006", pageDateLayout, time.RFC3339}

// formatDate normalizes a frontmatter date for display. Unknown formats are shown as written.
func formatDate(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range frontmatterDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(pageDateLayout)
		}
	}
	return value
}
