package client

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/rs/zerolog/log"
)

var (
	Decisions   = []string{"accept", "review", "reject"}
	ExportTypes = []string{"csv", "json"}
)

// Transaction history, decisions, stored images and files
type Transaction struct {
	exec *Executor
}

func NewTransaction(exec *Executor) *Transaction {
	return &Transaction{exec: exec}
}

type TransactionFilter struct {
	// -1 newest first, 1 oldest first
	Order int
	// 1 to 100
	Limit  int
	Offset int
	// Unix timestamps, ignored when 0
	CreatedAtMin int64
	CreatedAtMax int64
	CustomData   string
	Decision     string
	Docupass     string
	ProfileID    string
}

func DefaultTransactionFilter() TransactionFilter {
	return TransactionFilter{Order: -1, Limit: 10}
}

// fields returns the filter values that are set.
func (f TransactionFilter) fields() map[string]any {
	out := map[string]any{}
	if f.CreatedAtMin > 0 {
		out["createdAtMin"] = f.CreatedAtMin
	}
	if f.CreatedAtMax > 0 {
		out["createdAtMax"] = f.CreatedAtMax
	}
	if f.CustomData != "" {
		out["customData"] = f.CustomData
	}
	if f.Docupass != "" {
		out["docupass"] = f.Docupass
	}
	if f.Decision != "" {
		out["decision"] = f.Decision
	}
	if f.ProfileID != "" {
		out["profileId"] = f.ProfileID
	}
	return out
}

type ExportOptions struct {
	// "csv" (default) or "json"
	ExportType         string
	IgnoreUnrecognized bool
	IgnoreDuplicate    bool
	// Export only these transactions; all matching the filter when empty
	TransactionIDs []string
	// Order, Limit and Offset are not used by exports
	Filter TransactionFilter
}

func (t *Transaction) GetTransaction(ctx context.Context, transactionID string) (*Response, error) {
	if err := required(transactionID, "Transaction ID required."); err != nil {
		return nil, err
	}
	return t.exec.Get(ctx, "transaction/"+url.PathEscape(transactionID), nil, DefaultTimeout)
}

func (t *Transaction) ListTransaction(ctx context.Context, filter TransactionFilter) (*Response, error) {
	if err := validateList(filter.Order, filter.Limit); err != nil {
		return nil, err
	}
	q := listQuery(filter.Order, filter.Limit, filter.Offset)
	for k, v := range filter.fields() {
		q.Set(k, fmt.Sprint(v))
	}
	return t.exec.Get(ctx, "transaction", q, DefaultTimeout)
}

// UpdateTransaction changes the decision of a transaction. The new decision
// is relayed to the profile webhook if one is set.
func (t *Transaction) UpdateTransaction(ctx context.Context, transactionID, decision string) (*Response, error) {
	if err := required(transactionID, "Transaction ID required."); err != nil {
		return nil, err
	}
	if !slices.Contains(Decisions, decision) {
		return nil, models.InvalidArgument("'decision' should be either accept, review or reject.")
	}
	return t.exec.Patch(ctx, "transaction/"+url.PathEscape(transactionID), map[string]any{
		"decision": decision,
	}, DefaultTimeout)
}

func (t *Transaction) DeleteTransaction(ctx context.Context, transactionID string) (*Response, error) {
	if err := required(transactionID, "Transaction ID required."); err != nil {
		return nil, err
	}
	return t.exec.Delete(ctx, "transaction/"+url.PathEscape(transactionID), DefaultTimeout)
}

// SaveImage downloads a transaction image (token from the transaction's
// outputImage) to destination.
func (t *Transaction) SaveImage(ctx context.Context, imageToken, destination string) error {
	if err := required(imageToken, "'imageToken' required."); err != nil {
		return err
	}
	if err := required(destination, "'destination' required."); err != nil {
		return err
	}
	return t.exec.Download(ctx, "imagevault/"+url.PathEscape(imageToken), destination, DefaultTimeout)
}

// SaveFile downloads a transaction file, such as an audit report or a
// generated contract, using its secured file name.
func (t *Transaction) SaveFile(ctx context.Context, fileName, destination string) error {
	if err := required(fileName, "'fileName' required."); err != nil {
		return err
	}
	if err := required(destination, "'destination' required."); err != nil {
		return err
	}
	return t.exec.Download(ctx, "filevault/"+url.PathEscape(fileName), destination, DefaultTimeout)
}

// ExportTransaction requests a transaction archive and, when the response
// carries a download URL, streams the archive to destination.
func (t *Transaction) ExportTransaction(ctx context.Context, destination string, opts ExportOptions) (*Response, error) {
	if err := required(destination, "'destination' required."); err != nil {
		return nil, err
	}
	if opts.ExportType == "" {
		opts.ExportType = "csv"
	}
	if !slices.Contains(ExportTypes, opts.ExportType) {
		return nil, models.InvalidArgument("'exportType' should be either 'json' or 'csv'.")
	}
	if opts.TransactionIDs == nil {
		opts.TransactionIDs = []string{}
	}

	payload := map[string]any{
		"exportType":         opts.ExportType,
		"ignoreUnrecognized": opts.IgnoreUnrecognized,
		"ignoreDuplicate":    opts.IgnoreDuplicate,
	}
	if len(opts.TransactionIDs) > 0 {
		payload["transactionId"] = opts.TransactionIDs
	}
	maps.Copy(payload, opts.Filter.fields())

	resp, err := t.exec.Post(ctx, "export/transaction", payload, ExportTimeout)
	if err != nil {
		return resp, err
	}

	if download := resp.String("Url"); download != "" {
		if err := t.exec.Download(ctx, download, destination, ExportTimeout); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// Decider picks accept, review or reject for a transaction.
type Decider interface {
	Decide(ctx context.Context, transaction map[string]any) (string, error)
}

// Decide fetches a transaction, runs it through decider and stores the
// resulting decision.
func (t *Transaction) Decide(ctx context.Context, transactionID string, decider Decider) (*Response, error) {
	resp, err := t.GetTransaction(ctx, transactionID)
	if err != nil {
		return resp, err
	}
	if err := resp.Err(); err != nil {
		return resp, err
	}

	decision, err := decider.Decide(ctx, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decide transaction %s: %w", transactionID, err)
	}
	log.Debug().
		Str("transaction_id", transactionID).
		Str("decision", decision).
		Msg("applying local decision")

	return t.UpdateTransaction(ctx, transactionID, decision)
}
