package sandbox

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
)

type docupassRequest struct {
	Profile    string `json:"profile"`
	Mode       int    `json:"mode"`
	Reusable   bool   `json:"reusable"`
	CustomData string `json:"customData"`

	ReferenceDocument     string `json:"referenceDocument"`
	ReferenceDocumentBack string `json:"referenceDocumentBack"`
	ReferenceFace         string `json:"referenceFace"`
}

type docupassResponse struct {
	Success bool `json:"success"`
	models.Docupass
}

func (a *API) createDocupass(c *gin.Context) {
	var req docupassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "Invalid JSON request body: "+err.Error())
		return
	}
	if req.Profile == "" {
		apiError(c, http.StatusBadRequest, "Profile is required")
		return
	}
	if req.Mode < 0 || req.Mode > 3 {
		apiError(c, http.StatusBadRequest, "'mode' should be between 0 and 3")
		return
	}
	for _, ref := range []string{req.ReferenceDocument, req.ReferenceDocumentBack, req.ReferenceFace} {
		if ref == "" {
			continue
		}
		if _, err := a.readImage(ref, true); err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	reference := newID()[:12]
	d := models.Docupass{
		Reference:  reference,
		URL:        a.publicURL(c) + "/verify/" + reference,
		Profile:    req.Profile,
		Mode:       req.Mode,
		Reusable:   req.Reusable,
		CustomData: req.CustomData,
		CreatedAt:  a.Store.Now().Unix(),
	}
	a.Store.PutDocupass(d)
	c.JSON(http.StatusOK, docupassResponse{Success: true, Docupass: d})
}

func (a *API) listDocupass(c *gin.Context) {
	var q listQuery
	l, ok := bindList(c, &q)
	if !ok {
		return
	}
	items := a.Store.DocupassList()
	c.JSON(http.StatusOK, models.DocupassList{
		Items:  paginate(items, l),
		Total:  len(items),
		Limit:  l.Limit,
		Offset: l.Offset,
	})
}

func (a *API) deleteDocupass(c *gin.Context) {
	if !a.Store.DeleteDocupass(c.Param("reference")) {
		apiError(c, http.StatusNotFound, "Docupass reference not found")
		return
	}
	success(c)
}
