package sandbox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/idanalyzer/idanalyzer-go/pkg/input"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
)

// Every document scanned by the sandbox reads as this one.
const (
	sampleDocumentNumber = "X4RTBPFW4"
	sampleFullName       = "JANE DOE"
	sampleDOB            = "1990/04/20"
	sampleCountry        = "US"
	sampleDocumentType   = "D"
)

// Images whose content or URL contains this marker are flagged as forged.
const fakeMarker = "fake"

var errCacheMiss = errors.New("Cache reference not found or expired")

type scanRequest struct {
	Document             string         `json:"document"`
	DocumentBack         string         `json:"documentBack"`
	Face                 string         `json:"face"`
	FaceVideo            string         `json:"faceVideo"`
	Profile              string         `json:"profile"`
	ProfileOverride      map[string]any `json:"profileOverride"`
	CustomData           string         `json:"customData"`
	VerifyName           string         `json:"verifyName"`
	VerifyDob            string         `json:"verifyDob"`
	VerifyDocumentNumber string         `json:"verifyDocumentNumber"`
	RestrictCountry      string         `json:"restrictCountry"`
	RestrictType         string         `json:"restrictType"`
	ContractGenerate     string         `json:"contractGenerate"`
	ContractFormat       string         `json:"contractFormat"`
	ContractPrefill      map[string]any `json:"contractPrefill"`
}

type faceRequest struct {
	Reference  string `json:"reference"`
	Face       string `json:"face"`
	FaceVideo  string `json:"faceVideo"`
	Profile    string `json:"profile"`
	CustomData string `json:"customData"`
}

type quickScanRequest struct {
	Document     string `json:"document"`
	DocumentBack string `json:"documentBack"`
	SaveFile     bool   `json:"saveFile"`
}

type transactionResponse struct {
	Success bool `json:"success"`
	models.Transaction
}

func field(value string) []any {
	return []any{map[string]any{"value": value, "confidence": 0.99}}
}

func sampleData() map[string]any {
	return map[string]any{
		"documentNumber": field(sampleDocumentNumber),
		"firstName":      field("JANE"),
		"lastName":       field("DOE"),
		"fullName":       field(sampleFullName),
		"dob":            field(sampleDOB),
		"expiry":         field("2031/04/20"),
		"countryIso2":    field(sampleCountry),
		"stateShort":     field("CA"),
		"documentType":   field(sampleDocumentType),
	}
}

func warning(code, decision string) models.Warning {
	return models.Warning{Code: code, Severity: decision, Confidence: 1, Decision: decision}
}

// decide picks the most severe decision among warnings.
func decide(warnings []models.Warning) string {
	decision := "accept"
	for _, w := range warnings {
		switch w.Decision {
		case "reject":
			return "reject"
		case "review":
			decision = "review"
		}
	}
	return decision
}

// readImage decodes an uploaded image: a cache reference, a URL (kept as
// is, the sandbox fetches nothing) or base64 content.
func (a *API) readImage(value string, allowCache bool) ([]byte, error) {
	if strings.HasPrefix(value, input.CacheTokenPrefix) {
		if !allowCache {
			return nil, errors.New("Cache reference is not accepted for this input")
		}
		data, ok := a.Store.Cached(value)
		if !ok {
			return nil, errCacheMiss
		}
		return data, nil
	}
	if u, err := url.Parse(value); err == nil && u.Scheme != "" && u.Host != "" {
		return []byte(value), nil
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, errors.New("Invalid image data")
	}
	return data, nil
}

// storeImage keeps an image in the image vault and returns its token.
func (a *API) storeImage(data []byte) string {
	token := newID()
	a.Store.PutFile(token, File{ContentType: http.DetectContentType(data), Data: data})
	return token
}

func looksFake(images ...[]byte) bool {
	for _, data := range images {
		if bytes.Contains(bytes.ToLower(data), []byte(fakeMarker)) {
			return true
		}
	}
	return false
}

func (a *API) newTransaction(profile, customData string, data map[string]any, warnings []models.Warning) models.Transaction {
	return models.Transaction{
		TransactionID: newID(),
		Decision:      decide(warnings),
		ProfileID:     profile,
		CustomData:    customData,
		CreatedAt:     a.Store.Now().Unix(),
		Data:          data,
		Warning:       warnings,
		OutputImage:   map[string]string{},
	}
}

func (a *API) respondTransaction(c *gin.Context, tx models.Transaction) {
	c.Set("transaction_id", tx.TransactionID)
	c.JSON(http.StatusOK, transactionResponse{Success: true, Transaction: tx})
}

func (a *API) scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
		return
	}
	if req.Profile == "" {
		apiError(c, http.StatusBadRequest, "Profile is required")
		return
	}
	if req.Document == "" {
		apiError(c, http.StatusBadRequest, "Primary document image required")
		return
	}

	images := map[string][]byte{}
	for name, value := range map[string]string{
		"front": req.Document,
		"back":  req.DocumentBack,
		"face":  req.Face,
	} {
		if value == "" {
			continue
		}
		data, err := a.readImage(value, true)
		if err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		images[name] = data
	}
	if req.Face == "" && req.FaceVideo != "" {
		data, err := a.readImage(req.FaceVideo, false)
		if err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		images["faceVideo"] = data
	}

	var warnings []models.Warning
	if looksFake(images["front"], images["back"]) {
		warnings = append(warnings, warning("FAKE_ID", "reject"))
	}
	if req.VerifyName != "" && !strings.EqualFold(req.VerifyName, sampleFullName) {
		warnings = append(warnings, warning("UNMATCHED_NAME", "review"))
	}
	if req.VerifyDob != "" && req.VerifyDob != sampleDOB {
		warnings = append(warnings, warning("UNMATCHED_DOB", "review"))
	}
	if req.VerifyDocumentNumber != "" && req.VerifyDocumentNumber != sampleDocumentNumber {
		warnings = append(warnings, warning("UNMATCHED_DOCUMENT_NUMBER", "review"))
	}
	if req.RestrictCountry != "" && !listContains(req.RestrictCountry, sampleCountry) {
		warnings = append(warnings, warning("DOCUMENT_COUNTRY_MISMATCH", "reject"))
	}
	if req.RestrictType != "" && !strings.Contains(strings.ToUpper(req.RestrictType), sampleDocumentType) {
		warnings = append(warnings, warning("DOCUMENT_TYPE_MISMATCH", "reject"))
	}

	data := sampleData()
	if _, ok := images["face"]; ok {
		data["face"] = faceResult(images["face"])
		if looksFake(images["face"]) {
			warnings = append(warnings, warning("FACE_MISMATCH", "reject"))
		}
	}

	// templates are checked before anything is written to the store
	var templates []models.ContractTemplate
	if req.ContractGenerate != "" {
		for _, id := range strings.Split(req.ContractGenerate, ",") {
			t, ok := a.Store.Template(strings.TrimSpace(id))
			if !ok {
				apiError(c, http.StatusBadRequest, "Contract template not found: "+id)
				return
			}
			templates = append(templates, t)
		}
	}

	tx := a.newTransaction(req.Profile, req.CustomData, data, warnings)
	for name, image := range images {
		tx.OutputImage[name] = a.storeImage(image)
	}
	for _, t := range templates {
		tx.OutputFile = append(tx.OutputFile, a.renderContract(t, req.ContractFormat, req.ContractPrefill, data))
	}

	a.Store.PutTransaction(tx)
	a.respondTransaction(c, tx)
}

func (a *API) quickScan(c *gin.Context) {
	var req quickScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
		return
	}
	if req.Document == "" {
		apiError(c, http.StatusBadRequest, "Primary document image required")
		return
	}

	references := map[string]string{}
	for name, value := range map[string]string{
		"document":     req.Document,
		"documentBack": req.DocumentBack,
	} {
		if value == "" {
			continue
		}
		data, err := a.readImage(value, false)
		if err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		if req.SaveFile {
			token := input.CacheTokenPrefix + newID()
			a.Store.Cache(token, data)
			references[name] = token
		}
	}

	resp := gin.H{"success": true, "data": sampleData()}
	if req.SaveFile {
		resp["cacheReference"] = references
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) bindFace(c *gin.Context, needReference bool) (*faceRequest, map[string][]byte, bool) {
	var req faceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
		return nil, nil, false
	}
	if req.Profile == "" {
		apiError(c, http.StatusBadRequest, "Profile is required")
		return nil, nil, false
	}
	if needReference && req.Reference == "" {
		apiError(c, http.StatusBadRequest, "Reference face image required")
		return nil, nil, false
	}
	if req.Face == "" && req.FaceVideo == "" {
		apiError(c, http.StatusBadRequest, "Verification face image required")
		return nil, nil, false
	}

	images := map[string][]byte{}
	inputs := []struct {
		name, value string
		allowCache  bool
	}{
		{"reference", req.Reference, true},
		{"face", req.Face, true},
		{"faceVideo", req.FaceVideo, false},
	}
	for _, in := range inputs {
		if in.value == "" || (in.name == "faceVideo" && req.Face != "") {
			continue
		}
		data, err := a.readImage(in.value, in.allowCache)
		if err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return nil, nil, false
		}
		images[in.name] = data
	}
	return &req, images, true
}

func faceResult(face []byte) map[string]any {
	similarity := 0.93
	if looksFake(face) {
		similarity = 0.12
	}
	return map[string]any{"similarity": similarity, "isIdentical": similarity > 0.5}
}

func (a *API) face(c *gin.Context) {
	req, images, ok := a.bindFace(c, true)
	if !ok {
		return
	}
	selfie := images["face"]
	if selfie == nil {
		selfie = images["faceVideo"]
	}

	var warnings []models.Warning
	if looksFake(selfie) {
		warnings = append(warnings, warning("FACE_MISMATCH", "reject"))
	}
	tx := a.newTransaction(req.Profile, req.CustomData, map[string]any{"face": faceResult(selfie)}, warnings)
	for name, image := range images {
		tx.OutputImage[name] = a.storeImage(image)
	}

	a.Store.PutTransaction(tx)
	a.respondTransaction(c, tx)
}

func (a *API) liveness(c *gin.Context) {
	req, images, ok := a.bindFace(c, false)
	if !ok {
		return
	}
	selfie := images["face"]
	if selfie == nil {
		selfie = images["faceVideo"]
	}

	score := 0.97
	var warnings []models.Warning
	if looksFake(selfie) {
		score = 0.08
		warnings = append(warnings, warning("LIVENESS_FAILED", "reject"))
	}
	tx := a.newTransaction(req.Profile, req.CustomData, map[string]any{
		"liveness": map[string]any{"score": score, "isLive": score > 0.5},
	}, warnings)
	for name, image := range images {
		tx.OutputImage[name] = a.storeImage(image)
	}

	a.Store.PutTransaction(tx)
	a.respondTransaction(c, tx)
}

func listContains(list, value string) bool {
	for _, item := range strings.Split(list, ",") {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}
