// Package profile builds KYC profile overrides: a write-only accumulator of
// option keys attached to scan, biometric and Docupass requests.
package profile

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"gopkg.in/yaml.v3"
)

const (
	SecurityNone   = "security_none"
	SecurityLow    = "security_low"
	SecurityMedium = "security_medium"
	SecurityHigh   = "security_high"
)

var urlPattern = regexp.MustCompile(`^(?i)[a-z][a-z0-9+.\-]*://[^\s/?#]+[^\s]*$`)

type Profile struct {
	id string

	mu       sync.Mutex
	override map[string]any
}

// New creates a profile for a preset or custom profile id. An empty id
// selects SecurityNone.
func New(id string) *Profile {
	if id == "" {
		id = SecurityNone
	}
	return &Profile{
		id:       id,
		override: map[string]any{},
	}
}

func (p *Profile) ID() string {
	return p.id
}

// Overrides returns a deep copy of the accumulated options.
func (p *Profile) Overrides() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyMap(p.override)
}

// LoadJSON replaces all overrides with the given JSON object.
func (p *Profile) LoadJSON(s string) error {
	o := map[string]any{}
	if s != "" {
		if err := json.Unmarshal([]byte(s), &o); err != nil {
			return models.InvalidArgument("Invalid profile JSON: %s", err)
		}
	}
	p.replace(o)
	return nil
}

// LoadYAML replaces all overrides with the given YAML mapping.
func (p *Profile) LoadYAML(data []byte) error {
	o := map[string]any{}
	if err := yaml.Unmarshal(data, &o); err != nil {
		return models.InvalidArgument("Invalid profile YAML: %s", err)
	}
	p.replace(o)
	return nil
}

func (p *Profile) replace(o map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.override = o
}

func (p *Profile) set(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.override[key] = value
}

func (p *Profile) setNested(key, sub string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.override[key].(map[string]any)
	if !ok {
		m = map[string]any{}
		p.override[key] = m
	}
	m[sub] = value
}

// Input images larger than this are scaled down before processing. 0
// disables resizing.
func (p *Profile) CanvasSize(pixels int) {
	p.set("canvasSize", pixels)
}

func (p *Profile) OrientationCorrection(enabled bool) {
	p.set("orientationCorrection", enabled)
}

// Detect and return locations of signature, document and face.
func (p *Profile) ObjectDetection(enabled bool) {
	p.set("objectDetection", enabled)
}

// Parse AAMVA barcodes on US/CA ID and driver licenses.
func (p *Profile) AAMVABarcodeParsing(enabled bool) {
	p.set("AAMVABarcodeParsing", enabled)
}

func (p *Profile) SaveResult(saveTransaction, saveImages bool) {
	p.set("saveResult", saveTransaction)
	if saveImages {
		p.set("saveImage", saveImages)
	}
}

// Return output images in the response, as "url" or "base64".
func (p *Profile) OutputImage(enabled bool, format string) {
	p.set("outputImage", enabled)
	if enabled {
		if format == "" {
			format = "url"
		}
		p.set("outputType", format)
	}
}

func (p *Profile) AutoCrop(crop, advancedCrop bool) {
	p.set("crop", crop)
	p.set("advancedCrop", advancedCrop)
}

// Maximum width/height of output and saved images.
func (p *Profile) OutputSize(pixels int) {
	p.set("outputSize", pixels)
}

func (p *Profile) InferFullName(enabled bool) {
	p.set("inferFullName", enabled)
}

// Move the second word of a multi-word first name into the middle name.
func (p *Profile) SplitFirstName(enabled bool) {
	p.set("splitFirstName", enabled)
}

func (p *Profile) TransactionAuditReport(enabled bool) {
	p.set("transactionAuditReport", enabled)
}

// TZ database name used in audit reports; UTC when unset.
func (p *Profile) SetTimezone(timezone string) {
	p.set("timezone", timezone)
}

// Data field keys redacted before storage and blurred in output images.
func (p *Profile) Obscure(fieldKeys []string) {
	p.set("obscure", append([]string(nil), fieldKeys...))
}

// Webhook sets the URL receiving Docupass and scan results. Only remote
// http(s) URLs are accepted.
func (p *Profile) Webhook(rawURL string) error {
	if !urlPattern.MatchString(rawURL) {
		return models.InvalidArgument("Invalid URL format")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return models.InvalidArgument("Invalid URL format")
	}
	if strings.EqualFold(u.Hostname(), "localhost") {
		return models.InvalidArgument("Invalid URL, the host does not appear to be a remote host.")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return models.InvalidArgument("Invalid URL, only http and https protocols are allowed.")
	}

	p.set("webhook", rawURL)
	return nil
}

// Validation threshold of a single component, e.g. "face" or "liveness".
func (p *Profile) Threshold(key string, value float64) {
	p.setNested("thresholds", key, value)
}

// Total review/reject scores at or above which the decision becomes
// "review" or "reject". Reject has priority.
func (p *Profile) DecisionTrigger(review, reject float64) {
	p.set("decisionTrigger", map[string]any{
		"review": review,
		"reject": reject,
	})
}

// SetWarning tunes how a document validation component (warning code)
// contributes to the final decision. A negative threshold disables that
// contribution.
func (p *Profile) SetWarning(code string, enabled bool, reviewThreshold, rejectThreshold, weight float64) {
	p.setNested("decisions", code, map[string]any{
		"enabled": enabled,
		"review":  reviewThreshold,
		"reject":  rejectThreshold,
		"weight":  weight,
	})
}

// Comma separated ISO alpha-2 country codes, e.g. "US,CA".
func (p *Profile) RestrictDocumentCountry(countryCodes string) {
	p.setNested("acceptedDocuments", "documentCountry", countryCodes)
}

// Comma separated state names or abbreviations, e.g. "CA,TX".
func (p *Profile) RestrictDocumentState(states string) {
	p.setNested("acceptedDocuments", "documentState", states)
}

// Any of P (passport), D (driver license), I (identity card), e.g. "PD".
func (p *Profile) RestrictDocumentType(documentType string) {
	p.setNested("acceptedDocuments", "documentType", documentType)
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = copyValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
