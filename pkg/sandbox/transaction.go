package sandbox

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/idanalyzer/idanalyzer-go/pkg/client"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
)

type listQuery struct {
	Order  int `form:"order,default=-1"`
	Limit  int `form:"limit,default=10"`
	Offset int `form:"offset,default=0"`
}

type transactionFilter struct {
	CreatedAtMin int64  `form:"createdAtMin" json:"createdAtMin"`
	CreatedAtMax int64  `form:"createdAtMax" json:"createdAtMax"`
	CustomData   string `form:"customData" json:"customData"`
	Decision     string `form:"decision" json:"decision"`
	Docupass     string `form:"docupass" json:"docupass"`
	ProfileID    string `form:"profileId" json:"profileId"`
}

type transactionQuery struct {
	listQuery
	transactionFilter
}

type exportRequest struct {
	ExportType         string   `json:"exportType"`
	IgnoreUnrecognized bool     `json:"ignoreUnrecognized"`
	IgnoreDuplicate    bool     `json:"ignoreDuplicate"`
	TransactionID      []string `json:"transactionId"`
	transactionFilter
}

func (f transactionFilter) match(tx models.Transaction) bool {
	return (f.CreatedAtMin == 0 || tx.CreatedAt >= f.CreatedAtMin) &&
		(f.CreatedAtMax == 0 || tx.CreatedAt <= f.CreatedAtMax) &&
		(f.CustomData == "" || tx.CustomData == f.CustomData) &&
		(f.Decision == "" || tx.Decision == f.Decision) &&
		(f.Docupass == "" || tx.Docupass == f.Docupass) &&
		(f.ProfileID == "" || tx.ProfileID == f.ProfileID)
}

// bindList reads and validates order, limit and offset.
func bindList(c *gin.Context, q any) (listQuery, bool) {
	if err := c.ShouldBindQuery(q); err != nil {
		apiError(c, http.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return listQuery{}, false
	}
	var l listQuery
	switch v := q.(type) {
	case *listQuery:
		l = *v
	case *transactionQuery:
		l = v.listQuery
	}
	if l.Order != 1 && l.Order != -1 {
		apiError(c, http.StatusBadRequest, "'order' should be integer of 1 or -1")
		return l, false
	}
	if l.Limit <= 0 || l.Limit > 100 {
		apiError(c, http.StatusBadRequest, "'limit' should be between 1 and 100")
		return l, false
	}
	if l.Offset < 0 {
		apiError(c, http.StatusBadRequest, "'offset' should not be negative")
		return l, false
	}
	return l, true
}

// paginate expects items oldest first.
func paginate[T any](items []T, q listQuery) []T {
	if q.Order == -1 {
		slices.Reverse(items)
	}
	if q.Offset >= len(items) {
		return []T{}
	}
	items = items[q.Offset:]
	if len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items
}

func (a *API) listTransaction(c *gin.Context) {
	var q transactionQuery
	l, ok := bindList(c, &q)
	if !ok {
		return
	}

	items := slices.DeleteFunc(a.Store.Transactions(), func(tx models.Transaction) bool {
		return !q.match(tx)
	})
	c.JSON(http.StatusOK, models.TransactionList{
		Items:  paginate(items, l),
		Total:  len(items),
		Limit:  l.Limit,
		Offset: l.Offset,
	})
}

func (a *API) getTransaction(c *gin.Context) {
	tx, ok := a.Store.Transaction(c.Param("id"))
	if !ok {
		apiError(c, http.StatusNotFound, "Transaction not found")
		return
	}
	c.Set("transaction_id", tx.TransactionID)
	c.JSON(http.StatusOK, tx)
}

func (a *API) updateTransaction(c *gin.Context) {
	var body struct {
		Decision string `json:"decision"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
		return
	}
	if !slices.Contains(client.Decisions, body.Decision) {
		apiError(c, http.StatusBadRequest, "'decision' should be either accept, review or reject")
		return
	}

	id := c.Param("id")
	c.Set("transaction_id", id)
	if !a.Store.UpdateDecision(id, body.Decision) {
		apiError(c, http.StatusNotFound, "Transaction not found")
		return
	}
	success(c)
}

func (a *API) deleteTransaction(c *gin.Context) {
	id := c.Param("id")
	c.Set("transaction_id", id)
	if !a.Store.DeleteTransaction(id) {
		apiError(c, http.StatusNotFound, "Transaction not found")
		return
	}
	success(c)
}

// download serves image vault, file vault and export content.
func (a *API) download(c *gin.Context) {
	f, ok := a.Store.File(c.Param("name"))
	if !ok {
		apiError(c, http.StatusNotFound, "File not found")
		return
	}
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

func (a *API) downloadExport(c *gin.Context) {
	f, ok := a.Store.Export(c.Param("name"))
	if !ok {
		apiError(c, http.StatusNotFound, "File not found")
		return
	}
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

func (a *API) exportTransaction(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
		return
	}
	if req.ExportType == "" {
		req.ExportType = "csv"
	}
	if !slices.Contains(client.ExportTypes, req.ExportType) {
		apiError(c, http.StatusBadRequest, "'exportType' should be either 'json' or 'csv'")
		return
	}

	var selected []models.Transaction
	seen := map[string]bool{}
	for _, tx := range a.Store.Transactions() {
		if len(req.TransactionID) > 0 && !slices.Contains(req.TransactionID, tx.TransactionID) {
			continue
		}
		if !req.match(tx) {
			continue
		}
		number := firstValue(tx.Data, "documentNumber")
		if req.IgnoreUnrecognized && number == "" {
			continue
		}
		if req.IgnoreDuplicate && number != "" {
			if seen[number] {
				continue
			}
			seen[number] = true
		}
		selected = append(selected, tx)
	}

	archive, err := exportArchive(selected, req.ExportType)
	if err != nil {
		apiError(c, http.StatusInternalServerError, err.Error())
		return
	}
	name := newID() + ".zip"
	a.Store.PutExport(name, File{ContentType: "application/zip", Data: archive})

	c.JSON(http.StatusOK, models.ExportResponse{URL: a.publicURL(c) + "/export/" + name})
}

var exportColumns = []string{"transactionId", "createdAt", "decision", "profileId", "customData", "documentNumber", "fullName", "dob", "countryIso2"}

func exportArchive(transactions []models.Transaction, exportType string) ([]byte, error) {
	var content bytes.Buffer
	switch exportType {
	case "json":
		if transactions == nil {
			transactions = []models.Transaction{}
		}
		if err := models.JSONEncoder(&content).Encode(transactions); err != nil {
			return nil, err
		}
	default:
		w := csv.NewWriter(&content)
		_ = w.Write(exportColumns)
		for _, tx := range transactions {
			_ = w.Write([]string{
				tx.TransactionID,
				strconv.FormatInt(tx.CreatedAt, 10),
				tx.Decision,
				tx.ProfileID,
				tx.CustomData,
				firstValue(tx.Data, "documentNumber"),
				firstValue(tx.Data, "fullName"),
				firstValue(tx.Data, "dob"),
				firstValue(tx.Data, "countryIso2"),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("transactions." + exportType)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(content.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// firstValue returns the first value of a document field, e.g.
// {"dob": [{"value": "1990/04/20"}]}.
func firstValue(data map[string]any, key string) string {
	var fields []struct {
		Value string `json:"value"`
	}
	raw, err := json.Marshal(data[key])
	if err != nil || json.Unmarshal(raw, &fields) != nil || len(fields) == 0 {
		return ""
	}
	return fields[0].Value
}
