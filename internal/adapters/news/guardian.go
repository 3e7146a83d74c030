package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"hermes/pkg/errors"
)

// Article is a raw search result before normalization. The trail text is
// optional; publication dates arrive as RFC3339 strings and are repaired
// downstream when implausible.
type Article struct {
	ID          string
	Title       string
	TrailText   string
	PublishedAt string
	URL         string
}

// Client reads a Guardian-style content search API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a news search client. The upstream accepts the
// "test" key for keyless basic access.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if apiKey == "" {
		apiKey = "test"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type searchResponse struct {
	Response struct {
		Status  string `json:"status"`
		Results []struct {
			ID                 string `json:"id"`
			WebTitle           string `json:"webTitle"`
			WebPublicationDate string `json:"webPublicationDate"`
			WebURL             string `json:"webUrl"`
			Fields             struct {
				TrailText string `json:"trailText"`
			} `json:"fields"`
		} `json:"results"`
	} `json:"response"`
}

// Search returns up to limit articles matching query within section,
// ordered by relevance.
func (c *Client) Search(ctx context.Context, query, section string, limit int) ([]Article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("section", section)
	params.Set("order-by", "relevance")
	params.Set("show-fields", "trailText,byline,publication")
	params.Set("api-key", c.apiKey)

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrTransport, "news API returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(errors.ErrParse, err.Error())
	}
	if len(body.Response.Results) == 0 {
		return nil, errors.Wrapf(errors.ErrParse, "no news results")
	}

	results := body.Response.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	articles := make([]Article, 0, len(results))
	for _, r := range results {
		articles = append(articles, Article{
			ID:          r.ID,
			Title:       r.WebTitle,
			TrailText:   r.Fields.TrailText,
			PublishedAt: r.WebPublicationDate,
			URL:         r.WebURL,
		})
	}

	return articles, nil
}
