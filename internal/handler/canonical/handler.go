package canonical

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-records/internal/canonical/identity"
	"github.com/jwalitptl/admin-records/internal/model"
	canonicalService "github.com/jwalitptl/admin-records/internal/service/canonical"
	"github.com/jwalitptl/admin-records/pkg/errors"
	"github.com/jwalitptl/admin-records/pkg/httputil"
	"github.com/jwalitptl/admin-records/pkg/validator"
)

type Handler struct {
	service   canonicalService.CanonicalService
	validator validator.Validator
}

func NewHandler(service canonicalService.CanonicalService, validator validator.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/:entity/canonicalize", h.Canonicalize)
	r.POST("/:entity/serialize", h.Serialize)
	r.POST("/profiles/:role", h.ComposeProfile)
}

// batchRequest is the envelope for canonicalizing a page of records. The
// upper bound is enforced by the service's configured batch limit.
type batchRequest struct {
	Records []model.JSONMap `json:"records" validate:"required,min=1"`
}

type batchResponse struct {
	Entity  canonicalService.Entity `json:"entity"`
	Count   int                     `json:"count"`
	Records []interface{}           `json:"records"`
}

// Canonicalize accepts one raw record, a bare array of records, or an
// object of the form {"records": [...]}.
func (h *Handler) Canonicalize(c *gin.Context) {
	entity, err := canonicalService.ParseEntity(c.Param("entity"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	body, err := readBody(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var probe interface{}
	if err := json.Unmarshal(body, &probe); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("malformed JSON", err))
		return
	}

	var req batchRequest
	switch v := probe.(type) {
	case map[string]interface{}:
		if _, isBatch := v["records"]; !isBatch {
			out, err := h.service.Canonicalize(c.Request.Context(), entity, v)
			if err != nil {
				httputil.RespondWithError(c, err)
				return
			}
			httputil.RespondWithSuccess(c, out)
			return
		}
		err = json.Unmarshal(body, &req)
	case []interface{}:
		err = json.Unmarshal(body, &req.Records)
	default:
		httputil.RespondWithError(c, errors.BadRequest("body must be a JSON object or array", nil))
		return
	}
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("records must be an array of objects", err))
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	out, err := h.service.CanonicalizeBatch(c.Request.Context(), entity, req.Records)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, batchResponse{
		Entity:  entity,
		Count:   len(out),
		Records: out,
	})
}

// Serialize turns a canonical entity back into the backend's wire shape.
func (h *Handler) Serialize(c *gin.Context) {
	entity, err := canonicalService.ParseEntity(c.Param("entity"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	body, err := readBody(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	out, err := h.service.Serialize(c.Request.Context(), entity, body)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, out)
}

func readBody(c *gin.Context) ([]byte, error) {
	body, err := c.GetRawData()
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return nil, errors.PayloadTooLarge("request body too large", err)
		}
		return nil, errors.BadRequest("unreadable request body", err)
	}
	return body, nil
}

type profileResponse struct {
	Profile model.RoleProfile `json:"profile"`
	Wire    model.JSONMap     `json:"wire"`
}

// ComposeProfile canonicalizes a raw user record into the role profile named
// in the path. An identity of another role is rejected with 422.
func (h *Handler) ComposeProfile(c *gin.Context) {
	var raw model.JSONMap
	if err := c.ShouldBindJSON(&raw); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("body must be a JSON object", err))
		return
	}

	profile, err := h.service.ComposeProfile(c.Request.Context(), raw, c.Param("role"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profileResponse{
		Profile: profile,
		Wire:    identity.SerializeRoleProfile(profile),
	})
}
