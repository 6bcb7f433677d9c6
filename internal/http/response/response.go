// Package response renders the API envelope. Success payloads are
// {"status":"success","data":...}; failures are
// {"status":"error","message":...}. Stack traces and wrapped causes are
// never serialized.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notebook-buddy/backend/internal/platform/apierr"
)

type successEnvelope struct {
	Status   string   `json:"status"`
	Data     any      `json:"data"`
	Warnings []string `json:"warnings,omitempty"`
}

type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, successEnvelope{Status: "success", Data: data})
}

// RespondOKWithWarnings carries degraded-mode signals (placeholder
// embeddings, scan fallback) alongside a successful result.
func RespondOKWithWarnings(c *gin.Context, data any, warnings []string) {
	c.JSON(http.StatusOK, successEnvelope{Status: "success", Data: data, Warnings: warnings})
}

func RespondError(c *gin.Context, err error) {
	apiErr := apierr.From(err)
	c.JSON(apiErr.Status, errorEnvelope{Status: "error", Message: apiErr.Error()})
}

func RespondValidationError(c *gin.Context, err error) {
	RespondError(c, apierr.Validation("invalid request: %v", err))
}
