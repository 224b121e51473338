package calendar_date

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// BackendError is returned when the hosted REST backend answers with a non-2xx status.
type BackendError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *BackendError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// RestClient reads calendar dates from a PostgREST-compatible hosted database.
type RestClient struct {
	baseURL string
	apiKey  string
	table   string
	match   MatchMode
	client  *http.Client
}

func NewRestClient(baseURL, apiKey, table string, match MatchMode, timeout time.Duration) *RestClient {
	return &RestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   table,
		match:   match,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *RestClient) FindByNiches(ctx context.Context, niches []string) ([]Row, error) {
	operator := "ov"
	if c.match == MatchContains {
		operator = "cs"
	}
	params := url.Values{}
	params.Set("select", "*")
	params.Set("niches", operator+"."+arrayLiteral(niches))
	params.Set("order", "data.asc")

	var rows []Row
	if err := c.get(ctx, params, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

func (c *RestClient) ListNiches(ctx context.Context) ([]string, error) {
	params := url.Values{}
	params.Set("select", "niches")

	var rows []struct {
		Niches []string `json:"niches"`
	}
	if err := c.get(ctx, params, &rows); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	niches := make([]string, 0)
	for _, row := range rows {
		for _, n := range row.Niches {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				niches = append(niches, n)
			}
		}
	}
	slices.Sort(niches)
	return niches, nil
}

func (c *RestClient) get(ctx context.Context, params url.Values, target any) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, url.PathEscape(c.table), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("Failed to execute request: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		backendErr := &BackendError{Status: resp.StatusCode}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if json.Unmarshal(body, backendErr) != nil || backendErr.Message == "" {
			backendErr.Message = strings.TrimSpace(string(body))
		}
		log.Error(backendErr)
		return backendErr
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		log.Errorf("Failed to decode response: %v", err)
		return err
	}
	return nil
}

// arrayLiteral renders values as a PostgreSQL array literal, quoting every element.
func arrayLiteral(values []string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}
