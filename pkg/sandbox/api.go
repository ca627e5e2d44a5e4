// Package sandbox is an in-memory stand-in for the ID Analyzer API. It
// accepts the same requests as the hosted service and returns canned
// document data, so clients can be developed and tested offline.
package sandbox

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/idanalyzer/idanalyzer-go/pkg/client"
	"github.com/idanalyzer/idanalyzer-go/pkg/models"
	"github.com/rs/zerolog/log"
)

// Request bodies carry base64 images and videos
const MaxBodySize int64 = 64 << 20

type API struct {
	Gin    *gin.Engine
	Store  *Store
	Config *models.SandboxConfiguration
}

func NewAPI(config *models.SandboxConfiguration, apiKeys []string) *API {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(jsonLogs())
	router.Use(maxBodySize())

	a := &API{Gin: router, Store: NewStore(), Config: config}

	// export archives are fetched by URL
	router.GET("/export/:name", a.downloadExport)

	api := router.Group("/", APIKey(apiKeys))
	api.POST("/scan", a.scan)
	api.POST("/quickscan", a.quickScan)
	api.POST("/face", a.face)
	api.POST("/liveness", a.liveness)

	api.GET("/transaction", a.listTransaction)
	api.GET("/transaction/:id", a.getTransaction)
	api.PATCH("/transaction/:id", a.updateTransaction)
	api.DELETE("/transaction/:id", a.deleteTransaction)
	api.GET("/imagevault/:name", a.download)
	api.GET("/filevault/:name", a.download)
	api.POST("/export/transaction", a.exportTransaction)

	api.GET("/contract", a.listTemplate)
	api.POST("/contract", a.createTemplate)
	api.GET("/contract/:id", a.getTemplate)
	api.POST("/contract/:id", a.updateTemplate)
	api.DELETE("/contract/:id", a.deleteTemplate)
	api.POST("/generate", a.generate)

	api.GET("/docupass", a.listDocupass)
	api.POST("/docupass", a.createDocupass)
	api.DELETE("/docupass/:reference", a.deleteDocupass)

	router.NoRoute(func(c *gin.Context) {
		apiError(c, http.StatusNotFound, "Endpoint not found")
	})

	return a
}

func (a *API) Run() error {
	addr := a.Config.Listen
	log.Info().Str("address", addr).Str("public_url", a.Config.PublicURL).Msg("starting sandbox server")
	return a.Gin.Run(addr)
}

// publicURL is the base of links handed out to clients.
func (a *API) publicURL(c *gin.Context) string {
	base := a.Config.PublicURL
	if base == "" {
		base = "http://" + c.Request.Host
	}
	return strings.TrimSuffix(base, "/")
}

func apiError(c *gin.Context, status int, message string) {
	c.Set("reason", message)
	c.AbortWithStatusJSON(status, models.ErrorEnvelope{
		Error: models.ErrorBody{Message: message, Code: status},
	})
}

func success(c *gin.Context) {
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func jsonLogs() gin.HandlerFunc {
	return gin.LoggerWithFormatter(
		func(params gin.LogFormatterParams) string {
			line := log.Info().
				Any("request_id", params.Keys["request_id"]).
				Int("status", params.StatusCode).
				Str("method", params.Method).
				Str("path", params.Path).
				Str("client_ip", params.ClientIP).
				Dur("response_time", params.Latency)

			if id, ok := params.Keys["transaction_id"].(string); ok {
				line = line.Str("transaction_id", id)
			}

			if reason, ok := params.Keys["reason"].(string); ok {
				line = line.Str("reason", reason)
			}
			line.Send()
			return ""
		},
	)
}

// Echoes the client request id when one is sent.
func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader(client.HeaderRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}
		ctx.Set("request_id", rid)
		ctx.Header(client.HeaderRequestID, rid)
	}
}

func maxBodySize() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, MaxBodySize)
	}
}
