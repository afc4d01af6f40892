package service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/percolate/pedantic/internal/httputil"
	"github.com/percolate/pedantic/pedanticerrors"
	"github.com/percolate/pedantic/validator"
)

// successMessage is returned for fixtures that pass validation.
const successMessage = "All is well with the world (and your fixture)."

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// validate receives a fixture as a JSON payload and reports the validation
// result: 200 on success or for whitelisted endpoints, 400 with the error
// detail otherwise.
func (s *Server) validate(c *gin.Context) {
	if !httputil.IsJSONContentType(c.GetHeader("Content-Type")) {
		fixtureOutcomes.WithLabelValues(outcomeMalformed).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transport header `Content-Type` must be `application/json`."})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize))
	if err != nil {
		fixtureOutcomes.WithLabelValues(outcomeMalformed).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body: " + err.Error()})
		return
	}

	fixture, err := validator.ParseFixtureJSON(body)
	if err != nil {
		fixtureOutcomes.WithLabelValues(outcomeMalformed).Inc()
		resp := gin.H{"error": err.Error()}
		var data any
		if json.Unmarshal(body, &data) == nil {
			resp["data"] = data
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	result, err := s.validator.Check(fixture)
	switch {
	case err == nil && result.Whitelisted:
		fixtureOutcomes.WithLabelValues(outcomeWhitelisted).Inc()
		c.JSON(http.StatusOK, gin.H{"warning": result.Warning})
	case err == nil:
		fixtureOutcomes.WithLabelValues(outcomeValid).Inc()
		c.JSON(http.StatusOK, gin.H{"message": successMessage})
	case errors.Is(err, pedanticerrors.ErrUndefinedSchema):
		fixtureOutcomes.WithLabelValues(outcomeUndefined).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pedanticerrors.ErrSchemaValidation):
		fixtureOutcomes.WithLabelValues(outcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		fixtureOutcomes.WithLabelValues(outcomeError).Inc()
		s.log.Error("fixture validation failed", "path", fixture.Path, "method", fixture.Method, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
