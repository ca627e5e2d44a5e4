package client

import (
	"context"
	"net/url"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
)

// Hosted verification links
type Docupass struct {
	exec *Executor
}

func NewDocupass(exec *Executor) *Docupass {
	return &Docupass{exec: exec}
}

type DocupassOptions struct {
	// KYC profile id, required
	Profile string
	// 0 identity verification, 1 document only, 2 face only, 3 contract signing
	Mode     int
	Reusable bool

	ContractFormat   string
	ContractGenerate string
	ContractPrefill  map[string]any
	ContractSign     string
	CustomData       string
	Language         string
	UserPhone        string

	// Image references, resolved like scan inputs
	ReferenceDocument     string
	ReferenceDocumentBack string
	ReferenceFace         string

	VerifyAddress        string
	VerifyAge            string
	VerifyDOB            string
	VerifyDocumentNumber string
	VerifyName           string
	VerifyPostcode       string
}

func (d *Docupass) CreateDocupass(ctx context.Context, opts DocupassOptions) (*Response, error) {
	if err := required(opts.Profile, "Profile is required."); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"profile":  opts.Profile,
		"mode":     opts.Mode,
		"reusable": opts.Reusable,
	}
	if len(opts.ContractPrefill) > 0 {
		payload["contractPrefill"] = opts.ContractPrefill
	}
	for _, f := range []field{
		{"contractFormat", opts.ContractFormat},
		{"contractGenerate", opts.ContractGenerate},
		{"contractSign", opts.ContractSign},
		{"customData", opts.CustomData},
		{"language", opts.Language},
		{"userPhone", opts.UserPhone},
		{"verifyAddress", opts.VerifyAddress},
		{"verifyAge", opts.VerifyAge},
		{"verifyDOB", opts.VerifyDOB},
		{"verifyDocumentNumber", opts.VerifyDocumentNumber},
		{"verifyName", opts.VerifyName},
		{"verifyPostcode", opts.VerifyPostcode},
	} {
		if f.value != "" {
			payload[f.key] = f.value
		}
	}
	// resolved in order so the first invalid reference is reported
	for _, f := range []field{
		{"referenceDocument", opts.ReferenceDocument},
		{"referenceDocumentBack", opts.ReferenceDocumentBack},
		{"referenceFace", opts.ReferenceFace},
	} {
		if f.value == "" {
			continue
		}
		resolved, err := d.exec.Inputs.Resolve(f.value, true)
		if err != nil {
			return nil, err
		}
		payload[f.key] = resolved
	}

	return d.exec.Post(ctx, "docupass", payload, DocupassTimeout)
}

type field struct {
	key   string
	value string
}

func (d *Docupass) ListDocupass(ctx context.Context, order, limit, offset int) (*Response, error) {
	if err := validateList(order, limit); err != nil {
		return nil, err
	}
	return d.exec.Get(ctx, "docupass", listQuery(order, limit, offset), DocupassTimeout)
}

func (d *Docupass) DeleteDocupass(ctx context.Context, reference string) (*Response, error) {
	if reference == "" {
		return nil, models.InvalidArgument("'reference' is required.")
	}
	return d.exec.Delete(ctx, "docupass/"+url.PathEscape(reference), DocupassTimeout)
}
