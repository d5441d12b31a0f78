// Package sheets fetches the school catalog from a published Google Sheet
// through the gviz JSON endpoint.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kindermatch/internal/domain"
)

// Source reads the whole catalog in one call. No filtering is pushed down;
// the pipeline scans client-side.
type Source struct {
	httpClient *http.Client
	baseURL    string
	sheetID    string
	sheetName  string
	logger     *zap.Logger
}

// Config holds the catalog source settings.
type Config struct {
	BaseURL   string
	SheetID   string
	SheetName string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewSource creates a Google Sheets catalog source.
func NewSource(cfg *Config) *Source {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		sheetID:    cfg.SheetID,
		sheetName:  cfg.SheetName,
		logger:     logger,
	}
}

// gvizCell is one cell of a gviz table row. Values are usually strings but
// the endpoint returns numbers unquoted.
type gvizCell struct {
	V any `json:"v"`
}

type gvizRow struct {
	C []*gvizCell `json:"c"`
}

type gvizResponse struct {
	Table struct {
		Rows []gvizRow `json:"rows"`
	} `json:"table"`
}

// Fetch retrieves all school rows. Any transport or payload failure maps to
// domain.ErrCatalogUnavailable.
func (s *Source) Fetch(ctx context.Context) ([]domain.School, error) {
	u := fmt.Sprintf("%s/d/%s/gviz/tq?tqx=out:json&sheet=%s",
		s.baseURL, url.PathEscape(s.sheetID), url.QueryEscape(s.sheetName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %v: %w", err, domain.ErrCatalogUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog endpoint returned status %d: %w",
			resp.StatusCode, domain.ErrCatalogUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %v: %w", err, domain.ErrCatalogUnavailable)
	}

	schools, err := parseGviz(body)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("catalog fetched",
		zap.Int("schools", len(schools)),
		zap.Duration("latency", time.Since(start)),
	)
	return schools, nil
}

// HealthCheck verifies the catalog endpoint is reachable and parseable.
func (s *Source) HealthCheck(ctx context.Context) error {
	if _, err := s.Fetch(ctx); err != nil {
		return fmt.Errorf("catalog health check: %w", err)
	}
	return nil
}

// parseGviz strips the JS wrapper around the gviz payload and maps table rows
// to schools. The first data row is a header and is skipped, as are rows with
// an empty first cell.
func parseGviz(body []byte) ([]domain.School, error) {
	text := string(body)
	open := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if open < 0 || end < open {
		return nil, fmt.Errorf("no JSON object in catalog response: %w", domain.ErrCatalogUnavailable)
	}

	var parsed gvizResponse
	if err := json.Unmarshal([]byte(text[open:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("parse catalog response: %v: %w", err, domain.ErrCatalogUnavailable)
	}

	rows := parsed.Table.Rows
	schools := make([]domain.School, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		if cellString(row.C, 0) == "" {
			continue
		}
		schools = append(schools, domain.School{
			Name:               cellString(row.C, 0),
			Address:            cellString(row.C, 1),
			Phone:              cellString(row.C, 2),
			Website:            cellString(row.C, 3),
			TeachingMethods:    cellString(row.C, 4),
			Features:           cellString(row.C, 5),
			Curriculum:         cellString(row.C, 6),
			LearningExperience: cellString(row.C, 7),
			Gender:             cellString(row.C, 8),
		})
	}
	return schools, nil
}

func cellString(cells []*gvizCell, idx int) string {
	if idx >= len(cells) || cells[idx] == nil || cells[idx].V == nil {
		return ""
	}
	switch v := cells[idx].V.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
