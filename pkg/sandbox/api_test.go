package sandbox

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"maps"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

func init() {
	log.Logger = zerolog.Nop()
	gin.SetMode(gin.TestMode)
}

func newTestAPI() *API {
	return NewAPI(&models.SandboxConfiguration{}, []string{"other-key", testKey})
}

func serve(api *API, method, path, key string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.TODO(), method, path, bytes.NewReader(body))
	if key != "" {
		req.Header.Set("X-Api-Key", key)
	}
	api.Gin.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) models.ErrorEnvelope {
	var e models.ErrorEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestMaxBodySize(t *testing.T) {
	api := newTestAPI()
	api.Gin.POST("/upload", func(ctx *gin.Context) {
		var body string
		err := ctx.ShouldBindBodyWithJSON(&body)
		if err != nil {
			assert.Equal(t, "http: request body too large", err.Error())
			ctx.AbortWithStatus(http.StatusBadRequest)
			return
		}
		ctx.JSON(200, len(body))
	})

	w := serve(api, "POST", "/upload", "", []byte(`"smol"`))
	assert.Equal(t, 200, w.Code)

	largeBody := bytes.Repeat([]byte("a"), int(MaxBodySize+10))
	w = serve(api, "POST", "/upload", "", largeBody)
	assert.Equal(t, 400, w.Code)
}

func TestAPIKey(t *testing.T) {
	api := newTestAPI()

	w := serve(api, "GET", "/transaction", "", nil)
	assert.Equal(t, 401, w.Code)
	assert.Equal(t, models.ErrorEnvelope{Error: models.ErrorBody{Message: "API key is missing", Code: 401}}, envelope(t, w))

	w = serve(api, "GET", "/transaction", "wrong", nil)
	assert.Equal(t, 401, w.Code)
	assert.Equal(t, "Invalid API key", envelope(t, w).Error.Message)

	w = serve(api, "GET", "/transaction", testKey, nil)
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"items":[],"total":0,"limit":10,"offset":0}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	api := newTestAPI()

	w := serve(api, "GET", "/transaction", testKey, nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.TODO(), "GET", "/transaction", nil)
	req.Header.Set("X-Api-Key", testKey)
	req.Header.Set("X-Request-ID", "abc")
	api.Gin.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestNotFound(t *testing.T) {
	api := newTestAPI()

	w := serve(api, "GET", "/nothing", testKey, nil)
	assert.Equal(t, 404, w.Code)
	assert.Equal(t, 404, envelope(t, w).Error.Code)

	w = serve(api, "GET", "/transaction/missing", testKey, nil)
	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "Transaction not found", envelope(t, w).Error.Message)

	w = serve(api, "GET", "/export/missing.zip", "", nil)
	assert.Equal(t, 404, w.Code)
}

func scanDocument(t *testing.T, api *API, extra map[string]any) *httptest.ResponseRecorder {
	req := map[string]any{
		"profile":  "profile-1",
		"document": base64.StdEncoding.EncodeToString([]byte("secret passport bytes")),
	}
	maps.Copy(req, extra)
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return serve(api, "POST", "/scan", testKey, body)
}

func TestExportDoesNotServeVaultFiles(t *testing.T) {
	api := newTestAPI()

	w := scanDocument(t, api, nil)
	require.Equal(t, 200, w.Code)
	var tx models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tx))
	token := tx.OutputImage["front"]
	require.NotEmpty(t, token)

	w = serve(api, "GET", "/imagevault/"+token, "", nil)
	assert.Equal(t, 401, w.Code)
	w = serve(api, "GET", "/export/"+token, "", nil)
	assert.Equal(t, 404, w.Code)
	assert.NotContains(t, w.Body.String(), "secret passport bytes")

	w = serve(api, "GET", "/imagevault/"+token, testKey, nil)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "secret passport bytes", w.Body.String())

	w = serve(api, "POST", "/export/transaction", testKey, []byte(`{"exportType":"json"}`))
	require.Equal(t, 200, w.Code)
	var export models.ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &export))
	name := path.Base(export.URL)

	w = serve(api, "GET", "/export/"+name, "", nil)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	w = serve(api, "GET", "/filevault/"+name, testKey, nil)
	assert.Equal(t, 404, w.Code)
}

func TestScanMissingTemplateStoresNothing(t *testing.T) {
	api := newTestAPI()

	w := scanDocument(t, api, map[string]any{"contractGenerate": "nope"})
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "Contract template not found: nope", envelope(t, w).Error.Message)
	assert.Empty(t, api.Store.files)
	assert.Empty(t, api.Store.Transactions())
}

func TestListValidation(t *testing.T) {
	api := newTestAPI()

	for _, path := range []string{
		"/transaction?limit=0",
		"/transaction?limit=101",
		"/contract?order=0",
		"/docupass?offset=-1",
		"/transaction?limit=ten",
	} {
		w := serve(api, "GET", path, testKey, nil)
		assert.Equal(t, 400, w.Code, path)
	}

	w := serve(api, "GET", "/docupass?limit=100&order=1", testKey, nil)
	assert.Equal(t, 200, w.Code)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{5, 4}, paginate(append([]int{}, items...), listQuery{Order: -1, Limit: 2}))
	assert.Equal(t, []int{3, 4, 5}, paginate(append([]int{}, items...), listQuery{Order: 1, Limit: 10, Offset: 2}))
	assert.Equal(t, []int{}, paginate(append([]int{}, items...), listQuery{Order: 1, Limit: 10, Offset: 9}))
}

func TestStoreDeleteTransaction(t *testing.T) {
	s := NewStore()
	s.PutFile("img", File{Data: []byte("x")})
	s.PutFile("contract.pdf", File{Data: []byte("y")})
	s.PutTransaction(models.Transaction{
		TransactionID: "tx1",
		OutputImage:   map[string]string{"front": "img"},
		OutputFile:    []models.OutputFile{{Name: "NDA", FileName: "contract.pdf"}},
	})
	s.PutTransaction(models.Transaction{TransactionID: "tx2"})

	assert.True(t, s.DeleteTransaction("tx1"))
	assert.False(t, s.DeleteTransaction("tx1"))

	_, ok := s.File("img")
	assert.False(t, ok)
	_, ok = s.File("contract.pdf")
	assert.False(t, ok)
	assert.Len(t, s.Transactions(), 1)
}
