// Package rindegastos is the Report Provider adapter. It fetches
// pending expense reports and their approved expense lines, and flips
// the remote integration status once a report has been posted.
package rindegastos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/haxia/expense-integrator/internal/models"
	"go.uber.org/zap"
)

// Config holds Report Provider API settings
type Config struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// Client talks to the RindeGastos REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new RindeGastos client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.APIToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// FetchPendingReports retrieves approved reports not yet integrated.
// The provider applies the pending filter (IntegrationStatus=0), so a
// report marked integrated is never returned again.
func (c *Client) FetchPendingReports(ctx context.Context) ([]models.ExpenseReport, error) {
	q := url.Values{
		"IntegrationStatus": {"0"},
		"Status":            {"1"},
	}

	var payload struct {
		ExpenseReports []wireReport `json:"ExpenseReports"`
	}
	if err := c.get(ctx, "/getExpenseReports", q, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch expense reports: %w", err)
	}

	reports := make([]models.ExpenseReport, 0, len(payload.ExpenseReports))
	for _, w := range payload.ExpenseReports {
		report, err := w.toModel()
		if err != nil {
			return nil, fmt.Errorf("invalid expense report payload: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// FetchExpenseLines retrieves the approved expense lines of a report,
// ordered by the provider's fixed sort key.
func (c *Client) FetchExpenseLines(ctx context.Context, reportID string) ([]models.ExpenseLine, error) {
	q := url.Values{
		"ReportId": {reportID},
		"Status":   {"1"},
		"OrderBy":  {"3"},
		"Order":    {"ASC"},
	}

	var payload struct {
		Expenses []wireExpense `json:"Expenses"`
	}
	if err := c.get(ctx, "/getExpenses", q, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch expenses for report %s: %w", reportID, err)
	}

	lines := make([]models.ExpenseLine, 0, len(payload.Expenses))
	for _, w := range payload.Expenses {
		line, err := w.toModel()
		if err != nil {
			return nil, fmt.Errorf("invalid expense payload for report %s: %w", reportID, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// MarkIntegrated flips the report's remote integration status. The
// accounting code may be empty for excluded reports. The call is
// idempotent on the provider side.
func (c *Client) MarkIntegrated(ctx context.Context, reportID, accountingCode string) error {
	body, err := json.Marshal(map[string]interface{}{
		"Id":                reportID,
		"IntegrationStatus": 1,
		"IntegrationCode":   accountingCode,
		"IntegrationDate":   time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal integration payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/setExpenseReportIntegration", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build integration request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call integration API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("integration API returned status %d for report %s", resp.StatusCode, reportID)
	}

	c.logger.Debug("Integration status updated",
		zap.String("report_id", reportID),
		zap.String("accounting_code", accountingCode))
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
