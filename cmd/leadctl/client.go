package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/xavierca1/leadfunnel/internal/entity"
	"github.com/xavierca1/leadfunnel/internal/usecase"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// adminClient talks to the /admin routes of the API.
type adminClient struct {
	http *resty.Client
}

func newAdminClient(baseURL, token string) *adminClient {
	return &adminClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(token).
			SetTimeout(30 * time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

func (c *adminClient) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetError(&apiError{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		if e, ok := resp.Error().(*apiError); ok && e.Message != "" {
			return fmt.Errorf("%s (%s, HTTP %d)", e.Message, e.Code, resp.StatusCode())
		}
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode())
	}
	return nil
}

func (c *adminClient) ListLeads(ctx context.Context, status string) ([]entity.Lead, error) {
	var leads []entity.Lead
	path := "/admin/leads"
	if status != "" {
		path += "?status=" + status
	}
	return leads, c.do(ctx, resty.MethodGet, path, nil, &leads)
}

func (c *adminClient) Stats(ctx context.Context) (*usecase.StatsOutput, error) {
	var out usecase.StatsOutput
	return &out, c.do(ctx, resty.MethodGet, "/admin/stats", nil, &out)
}

func (c *adminClient) Outreach(ctx context.Context, id, channel string) (*usecase.OutreachResult, error) {
	var out usecase.OutreachResult
	return &out, c.do(ctx, resty.MethodPost, "/admin/leads/"+id+"/outreach", map[string]string{"channel": channel}, &out)
}

func (c *adminClient) Respond(ctx context.Context, id string, positive bool) (*usecase.ResponseResult, error) {
	var out usecase.ResponseResult
	return &out, c.do(ctx, resty.MethodPost, "/admin/leads/"+id+"/response", map[string]bool{"positive": positive}, &out)
}

func (c *adminClient) Convert(ctx context.Context, id string) (*entity.Lead, error) {
	var out entity.Lead
	return &out, c.do(ctx, resty.MethodPost, "/admin/leads/"+id+"/convert", nil, &out)
}

// Export copies the workbook into w.
func (c *adminClient) Export(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := c.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get("/admin/export.xlsx")
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("export: HTTP %d", resp.StatusCode())
	}
	return io.Copy(w, body)
}
