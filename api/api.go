// Package api exposes the dispatcher over HTTP.
//
//	POST /v1/generate    dispatch one request, 200 with the artifact path or the failure status
//	GET  /v1/providers   list registered providers with kind and catalog
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/logger"
	"github.com/fxgurv/ALONE/server"
)

// Dispatcher is the subset of generation.Dispatcher the handlers need.
type Dispatcher interface {
	Dispatch(ctx context.Context, req generation.Request) generation.Result
	Providers(ctx context.Context) []generation.ProviderInfo
}

// GenerateResponse is the success body of POST /v1/generate.
type GenerateResponse struct {
	FilePath   string `json:"file_path"`
	Provider   string `json:"provider"`
	JobID      string `json:"job_id,omitempty"`
	Bytes      int64  `json:"bytes"`
	DurationMS int64  `json:"duration_ms"`
}

// ProvidersResponse is the body of GET /v1/providers.
type ProvidersResponse struct {
	Providers []generation.ProviderInfo `json:"providers"`
}

// Handler serves the generation API.
type Handler struct {
	dispatcher Dispatcher
	log        *logger.Logger
}

// NewHandler creates a handler backed by d.
func NewHandler(d Dispatcher, log *logger.Logger) *Handler {
	return &Handler{dispatcher: d, log: log.WithComponent("api")}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/generate", h.Generate)
	v1.GET("/providers", h.Providers)
}

// Generate dispatches one request. The request runs to completion, or until
// the client disconnects, before the response is written.
func (h *Handler) Generate(c *gin.Context) {
	var req generation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.Validation(fmt.Sprintf("body: %v", err)))
		return
	}

	res := h.dispatcher.Dispatch(c.Request.Context(), req)
	if !res.OK() {
		server.RespondWithError(c, res.Failure)
		return
	}
	server.RespondOK(c, GenerateResponse{
		FilePath:   res.FilePath,
		Provider:   res.Provider,
		JobID:      res.JobID,
		Bytes:      res.Bytes,
		DurationMS: res.Duration.Milliseconds(),
	})
}

// Providers lists the registered providers.
func (h *Handler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, ProvidersResponse{Providers: h.dispatcher.Providers(c.Request.Context())})
}

// Availability reports, per provider, whether its credentials are present.
// It serves as the health checker for /healthz.
func (h *Handler) Availability(ctx context.Context) map[string]bool {
	infos := h.dispatcher.Providers(ctx)
	out := make(map[string]bool, len(infos))
	for _, p := range infos {
		out[p.ID] = p.Available
	}
	return out
}
