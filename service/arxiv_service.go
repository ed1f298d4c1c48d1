package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tieubaoca/arxchive-be/types"
	"github.com/tieubaoca/arxchive-be/utils"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	// DefaultStartYear is the lower bound of the submittedDate range
	// when the date filter is off. arXiv has no papers before 1991.
	DefaultStartYear = 1991

	MinResults = 1
	MaxResults = 5
)

// ArxivService is the paper discovery client.
type ArxivService struct {
	client     *http.Client
	maxRetries int
}

func NewArxivService(client *http.Client, maxRetries int) *ArxivService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ArxivService{
		client:     client,
		maxRetries: maxRetries,
	}
}

// FetchPapers queries arXiv for papers matching the topic within the
// inclusive year range, ordered by relevance. maxResults is clamped to
// [1, 5]; zero years fall back to [1991, current year].
func (s *ArxivService) FetchPapers(ctx context.Context, query string, maxResults, startYear, endYear int) ([]types.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if maxResults < MinResults {
		maxResults = MinResults
	}
	if maxResults > MaxResults {
		maxResults = MaxResults
	}
	if startYear <= 0 {
		startYear = DefaultStartYear
	}
	if endYear <= 0 {
		endYear = time.Now().Year()
	}

	dateQuery := fmt.Sprintf("%s AND submittedDate:[%d0101 TO %d1231]", query, startYear, endYear)
	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, url.QueryEscape(dateQuery), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := utils.DoWithRetry(ctx, s.client, req, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []types.Paper
	for _, entry := range feed.Entries {
		if entry.ID == "" {
			continue
		}

		p := types.Paper{
			EntryID: strings.TrimSpace(entry.ID),
			Title:   strings.TrimSpace(entry.Title),
			Summary: strings.TrimSpace(entry.Summary),
			PDFURL:  entry.pdfURL(),
		}
		for _, a := range entry.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			p.Published = t
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr"`
}

// pdfURL returns the entry's PDF link, falling back to the /abs/ to
// /pdf/ rewrite when the feed carries no explicit pdf link.
func (e arxivEntry) pdfURL() string {
	for _, l := range e.Links {
		if l.Title == "pdf" {
			return l.Href
		}
	}
	return strings.Replace(e.ID, "/abs/", "/pdf/", 1)
}

// ArxivID extracts the bare identifier from an entry URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" yields "2301.07041v1").
func ArxivID(entryID string) string {
	const prefix = "/abs/"
	idx := strings.Index(entryID, prefix)
	if idx < 0 {
		return entryID
	}
	return entryID[idx+len(prefix):]
}
