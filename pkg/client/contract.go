package client

import (
	"context"
	"net/url"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
)

// Contract template management and document generation
type Contract struct {
	exec *Executor
}

func NewContract(exec *Executor) *Contract {
	return &Contract{exec: exec}
}

type Template struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	// "0" portrait, "1" landscape
	Orientation string `json:"orientation"`
	Timezone    string `json:"timezone"`
	Font        string `json:"font"`
}

func (t Template) withDefaults() (Template, error) {
	if t.Name == "" {
		return t, models.InvalidArgument("Template name required.")
	}
	if t.Content == "" {
		return t, models.InvalidArgument("Template content required.")
	}
	if t.Orientation == "" {
		t.Orientation = "0"
	}
	if t.Timezone == "" {
		t.Timezone = "UTC"
	}
	if t.Font == "" {
		t.Font = "Open Sans"
	}
	return t, nil
}

// Generate fills a template with data from a transaction and fillData.
// On conflicting keys the transaction data wins.
func (c *Contract) Generate(ctx context.Context, templateID, format, transactionID string, fillData map[string]any) (*Response, error) {
	if err := required(templateID, "Template ID required."); err != nil {
		return nil, err
	}
	if format == "" {
		format = "PDF"
	}

	payload := map[string]any{
		"format":     format,
		"templateId": templateID,
	}
	if transactionID != "" {
		payload["transactionId"] = transactionID
	}
	if len(fillData) > 0 {
		payload["fillData"] = fillData
	}

	return c.exec.Post(ctx, "generate", payload, DefaultTimeout)
}

func (c *Contract) ListTemplate(ctx context.Context, order, limit, offset int, templateID string) (*Response, error) {
	if err := validateList(order, limit); err != nil {
		return nil, err
	}
	q := listQuery(order, limit, offset)
	if templateID != "" {
		q.Set("templateId", templateID)
	}
	return c.exec.Get(ctx, "contract", q, DefaultTimeout)
}

func (c *Contract) GetTemplate(ctx context.Context, templateID string) (*Response, error) {
	if err := required(templateID, "Template ID required."); err != nil {
		return nil, err
	}
	return c.exec.Get(ctx, "contract/"+url.PathEscape(templateID), nil, DefaultTimeout)
}

func (c *Contract) DeleteTemplate(ctx context.Context, templateID string) (*Response, error) {
	if err := required(templateID, "Template ID required."); err != nil {
		return nil, err
	}
	return c.exec.Delete(ctx, "contract/"+url.PathEscape(templateID), DefaultTimeout)
}

func (c *Contract) CreateTemplate(ctx context.Context, t Template) (*Response, error) {
	t, err := t.withDefaults()
	if err != nil {
		return nil, err
	}
	return c.exec.Post(ctx, "contract", t, DefaultTimeout)
}

func (c *Contract) UpdateTemplate(ctx context.Context, templateID string, t Template) (*Response, error) {
	if err := required(templateID, "Template ID required."); err != nil {
		return nil, err
	}
	t, err := t.withDefaults()
	if err != nil {
		return nil, err
	}
	return c.exec.Post(ctx, "contract/"+url.PathEscape(templateID), t, DefaultTimeout)
}
