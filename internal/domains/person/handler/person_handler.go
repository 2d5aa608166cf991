package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"photovault-backend/internal/domains/person/model"
	"photovault-backend/internal/domains/person/service"
	"photovault-backend/internal/shared/response"
)

type PersonHandler struct {
	personService service.PersonService
}

func NewPersonHandler(personService service.PersonService) *PersonHandler {
	return &PersonHandler{personService: personService}
}

// getUserID reads the authenticated user set by the auth middleware.
func getUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func parsePersonID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid person ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondReadError maps lookup failures: on read endpoints a missing record
// is a 404.
func respondReadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrPersonNotFound):
		response.NotFound(c, "Person not found")
	case errors.Is(err, model.ErrNoThumbnail):
		response.NotFound(c, "Person has no thumbnail")
	default:
		response.InternalServerError(c, "Failed to load person")
	}
}

// respondWriteError maps mutation failures: referencing a missing person or
// face in an update or merge is the caller's mistake, so it is a 400.
func respondWriteError(c *gin.Context, err error, fallback string) {
	var fieldErrors validation.Errors
	switch {
	case errors.As(err, &fieldErrors):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", fieldErrors)
	case errors.Is(err, model.ErrPersonNotFound):
		response.BadRequest(c, "Person not found")
	case errors.Is(err, model.ErrFaceNotFound):
		response.BadRequest(c, "Face not found for this person")
	default:
		response.InternalServerError(c, fallback)
	}
}

// ListPeople handles GET /api/v1/people
func (h *PersonHandler) ListPeople(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	withHidden := false
	if raw := c.Query("withHidden"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "Invalid withHidden value")
			return
		}
		withHidden = parsed
	}

	resp, err := h.personService.GetAll(c.Request.Context(), userID, withHidden)
	if err != nil {
		response.InternalServerError(c, "Failed to list people")
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// GetPerson handles GET /api/v1/people/:id
func (h *PersonHandler) GetPerson(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	id, ok := parsePersonID(c)
	if !ok {
		return
	}

	resp, err := h.personService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondReadError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// GetPersonThumbnail handles GET /api/v1/people/:id/thumbnail
func (h *PersonHandler) GetPersonThumbnail(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	id, ok := parsePersonID(c)
	if !ok {
		return
	}

	stream, err := h.personService.GetThumbnail(c.Request.Context(), userID, id)
	if err != nil {
		respondReadError(c, err)
		return
	}
	defer stream.Reader.Close()

	c.DataFromReader(http.StatusOK, stream.Size, stream.ContentType, stream.Reader, map[string]string{
		"Cache-Control": "private, max-age=86400",
	})
}

// GetPersonAssets handles GET /api/v1/people/:id/assets
func (h *PersonHandler) GetPersonAssets(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	id, ok := parsePersonID(c)
	if !ok {
		return
	}

	assets, err := h.personService.GetAssets(c.Request.Context(), userID, id)
	if err != nil {
		respondReadError(c, err)
		return
	}

	response.Success(c, http.StatusOK, assets)
}

// UpdatePerson handles PUT /api/v1/people/:id
func (h *PersonHandler) UpdatePerson(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	id, ok := parsePersonID(c)
	if !ok {
		return
	}

	var req model.UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondWriteError(c, err, "Failed to update person")
		return
	}

	resp, err := h.personService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		respondWriteError(c, err, "Failed to update person")
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// BulkUpdatePeople handles PUT /api/v1/people
func (h *PersonHandler) BulkUpdatePeople(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.BulkUpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondWriteError(c, err, "Failed to update people")
		return
	}

	results, err := h.personService.BulkUpdate(c.Request.Context(), userID, req)
	if err != nil {
		respondWriteError(c, err, "Failed to update people")
		return
	}

	response.Success(c, http.StatusOK, results)
}

// MergePerson handles POST /api/v1/people/:id/merge
func (h *PersonHandler) MergePerson(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	id, ok := parsePersonID(c)
	if !ok {
		return
	}

	var req model.MergePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondWriteError(c, err, "Failed to merge people")
		return
	}

	results, err := h.personService.Merge(c.Request.Context(), userID, id, req)
	if err != nil {
		respondWriteError(c, err, "Failed to merge people")
		return
	}

	response.Success(c, http.StatusOK, results)
}

// ExportPeople handles GET /api/v1/people/export
func (h *PersonHandler) ExportPeople(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	file, err := h.personService.ExportPeople(c.Request.Context(), userID)
	if err != nil {
		response.InternalServerError(c, "Failed to export people")
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="people.xlsx"`)
	c.Status(http.StatusOK)

	if err := file.Write(c.Writer); err != nil {
		// Headers are gone already; nothing left to do but log.
		_ = c.Error(err)
	}
}
