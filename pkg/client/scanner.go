package client

import (
	"context"
	"regexp"
	"time"

	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/idanalyzer/idanalyzer-go/pkg/profile"
	"github.com/idanalyzer/idanalyzer-go/pkg/static"
)

var ageRangePattern = regexp.MustCompile(`^\d+-\d+$`)

// Identity document scanning
type Scanner struct {
	exec   *Executor
	params *params
}

func NewScanner(exec *Executor) *Scanner {
	return &Scanner{
		exec: exec,
		params: newParams(map[string]any{
			"client":               static.ClientLibrary,
			"document":             "",
			"documentBack":         "",
			"face":                 "",
			"faceVideo":            "",
			"profile":              "",
			"verifyName":           "",
			"verifyDob":            "",
			"verifyAge":            "",
			"verifyAddress":        "",
			"verifyPostcode":       "",
			"verifyDocumentNumber": "",
			"restrictCountry":      "",
			"restrictState":        "",
			"restrictType":         "",
			"ip":                   "",
			"customData":           "",
		}),
	}
}

func (s *Scanner) SetProfile(p *profile.Profile) error {
	return s.params.setProfile(p)
}

// User IP address, checked against the issuing country of the document.
// The connection IP is used when unset.
func (s *Scanner) SetUserIP(ip string) {
	s.params.set("ip", ip)
}

func (s *Scanner) SetCustomData(customData string) {
	s.params.set("customData", customData)
}

func (s *Scanner) SetParam(key string, value any) {
	s.params.set(key, value)
}

// SetContractOptions generates up to 5 comma separated contract templates
// from the scanned data. An empty templateID disables contract generation.
func (s *Scanner) SetContractOptions(templateID, format string, prefill map[string]any) {
	if templateID == "" {
		s.params.delete("contractGenerate", "contractFormat", "contractPrefill")
		return
	}
	if format == "" {
		format = "PDF"
	}
	s.params.set("contractGenerate", templateID)
	s.params.set("contractFormat", format)
	if len(prefill) > 0 {
		s.params.set("contractPrefill", prefill)
	} else {
		s.params.delete("contractPrefill")
	}
}

// VerifyUserInformation checks customer information against the document.
// dob is YYYY/MM/DD and ageRange is "min-max"; empty values skip the check.
func (s *Scanner) VerifyUserInformation(documentNumber, fullName, dob, ageRange, address, postcode string) error {
	if dob != "" {
		if _, err := time.Parse("2006/01/02", dob); err != nil {
			return models.InvalidArgument("Invalid birthday format (YYYY/MM/DD)")
		}
	}
	if ageRange != "" && !ageRangePattern.MatchString(ageRange) {
		return models.InvalidArgument("Invalid age range format (minAge-maxAge)")
	}

	s.params.set("verifyDocumentNumber", documentNumber)
	s.params.set("verifyName", fullName)
	s.params.set("verifyDob", dob)
	s.params.set("verifyAge", ageRange)
	s.params.set("verifyAddress", address)
	s.params.set("verifyPostcode", postcode)
	return nil
}

// Comma separated ISO alpha-2 country codes, e.g. "US,CA,UK".
func (s *Scanner) RestrictCountry(countryCodes string) {
	s.params.set("restrictCountry", countryCodes)
}

func (s *Scanner) RestrictState(states string) {
	s.params.set("restrictState", states)
}

// Any of P (passport), D (driver license), I (identity card).
func (s *Scanner) RestrictType(documentType string) {
	s.params.set("restrictType", documentType)
}

// Scan starts a document scan and face verification transaction.
func (s *Scanner) Scan(ctx context.Context, documentFront, documentBack, facePhoto, faceVideo string) (*Response, error) {
	if !s.params.profileSet() {
		return nil, models.InvalidArgument(errProfileNotSet)
	}
	if err := required(documentFront, "Primary document image required."); err != nil {
		return nil, err
	}

	payload := s.params.snapshot()
	var err error
	if payload["document"], err = s.exec.Inputs.Resolve(documentFront, true); err != nil {
		return nil, err
	}
	if documentBack != "" {
		if payload["documentBack"], err = s.exec.Inputs.Resolve(documentBack, true); err != nil {
			return nil, err
		}
	}
	if facePhoto != "" {
		if payload["face"], err = s.exec.Inputs.Resolve(facePhoto, true); err != nil {
			return nil, err
		}
	} else if faceVideo != "" {
		if payload["faceVideo"], err = s.exec.Inputs.Resolve(faceVideo, false); err != nil {
			return nil, err
		}
	}

	return s.exec.Post(ctx, "scan", payload, DefaultTimeout)
}

// QuickScan runs OCR only and needs no profile. With cacheImage the
// uploaded images are kept for 24 hours and the response carries cache
// references usable by Scan.
func (s *Scanner) QuickScan(ctx context.Context, documentFront, documentBack string, cacheImage bool) (*Response, error) {
	if err := required(documentFront, "Primary document image required."); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"saveFile": cacheImage,
	}
	var err error
	if payload["document"], err = s.exec.Inputs.Resolve(documentFront, false); err != nil {
		return nil, err
	}
	if documentBack != "" {
		if payload["documentBack"], err = s.exec.Inputs.Resolve(documentBack, false); err != nil {
			return nil, err
		}
	}

	return s.exec.Post(ctx, "quickscan", payload, DefaultTimeout)
}
