package sandbox

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
)

var contractContentTypes = map[string]string{
	"PDF":  "application/pdf",
	"DOCX": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"HTML": "text/html; charset=utf-8",
}

type templateRequest struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Orientation string `json:"orientation"`
	Timezone    string `json:"timezone"`
	Font        string `json:"font"`
}

type generateRequest struct {
	TemplateID    string         `json:"templateId"`
	Format        string         `json:"format"`
	TransactionID string         `json:"transactionId"`
	FillData      map[string]any `json:"fillData"`
}

// renderContract fills %{key} placeholders and stores the result in the
// file vault. Document data overrides fillData.
func (a *API) renderContract(t models.ContractTemplate, format string, fillData, data map[string]any) models.OutputFile {
	format = strings.ToUpper(format)
	contentType, ok := contractContentTypes[format]
	if !ok {
		format, contentType = "PDF", contractContentTypes["PDF"]
	}

	values := map[string]string{}
	for k, v := range fillData {
		values[k] = fmt.Sprint(v)
	}
	for k := range data {
		if v := firstValue(data, k); v != "" {
			values[k] = v
		}
	}
	pairs := make([]string, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, "%{"+k+"}", v)
	}
	content := strings.NewReplacer(pairs...).Replace(t.Content)

	name := newID() + "." + strings.ToLower(format)
	a.Store.PutFile(name, File{ContentType: contentType, Data: []byte(content)})
	return models.OutputFile{Name: t.Name, FileName: name}
}

func (a *API) bindTemplate(c *gin.Context) (*templateRequest, bool) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
		return nil, false
	}
	if req.Name == "" {
		apiError(c, http.StatusBadRequest, "Template name required")
		return nil, false
	}
	if req.Content == "" {
		apiError(c, http.StatusBadRequest, "Template content required")
		return nil, false
	}
	return &req, true
}

func (a *API) createTemplate(c *gin.Context) {
	req, ok := a.bindTemplate(c)
	if !ok {
		return
	}
	t := models.ContractTemplate{
		TemplateID:  newID(),
		Name:        req.Name,
		Content:     req.Content,
		Orientation: req.Orientation,
		Timezone:    req.Timezone,
		Font:        req.Font,
		UpdatedAt:   a.Store.Now().Unix(),
	}
	a.Store.PutTemplate(t)
	c.JSON(http.StatusOK, t)
}

func (a *API) updateTemplate(c *gin.Context) {
	t, ok := a.Store.Template(c.Param("id"))
	if !ok {
		apiError(c, http.StatusNotFound, "Contract template not found")
		return
	}
	req, ok := a.bindTemplate(c)
	if !ok {
		return
	}
	t.Name = req.Name
	t.Content = req.Content
	t.Orientation = req.Orientation
	t.Timezone = req.Timezone
	t.Font = req.Font
	t.UpdatedAt = a.Store.Now().Unix()

	a.Store.PutTemplate(t)
	c.JSON(http.StatusOK, t)
}

func (a *API) getTemplate(c *gin.Context) {
	t, ok := a.Store.Template(c.Param("id"))
	if !ok {
		apiError(c, http.StatusNotFound, "Contract template not found")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *API) deleteTemplate(c *gin.Context) {
	if !a.Store.DeleteTemplate(c.Param("id")) {
		apiError(c, http.StatusNotFound, "Contract template not found")
		return
	}
	success(c)
}

func (a *API) listTemplate(c *gin.Context) {
	var q listQuery
	l, ok := bindList(c, &q)
	if !ok {
		return
	}

	items := a.Store.Templates()
	if id := c.Query("templateId"); id != "" {
		items = []models.ContractTemplate{}
		if t, ok := a.Store.Template(id); ok {
			items = append(items, t)
		}
	}
	// listings leave out template content
	for i := range items {
		items[i].Content = ""
	}

	c.JSON(http.StatusOK, models.ContractTemplateList{
		Items:  paginate(items, l),
		Total:  len(items),
		Limit:  l.Limit,
		Offset: l.Offset,
	})
}

func (a *API) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
		return
	}
	t, ok := a.Store.Template(req.TemplateID)
	if !ok {
		apiError(c, http.StatusNotFound, "Contract template not found")
		return
	}

	var data map[string]any
	if req.TransactionID != "" {
		tx, ok := a.Store.Transaction(req.TransactionID)
		if !ok {
			apiError(c, http.StatusNotFound, "Transaction not found")
			return
		}
		c.Set("transaction_id", tx.TransactionID)
		data = tx.Data
	}

	f := a.renderContract(t, req.Format, req.FillData, data)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"name":     f.Name,
		"fileName": f.FileName,
	})
}
