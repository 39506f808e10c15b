package handlers

import (
	"errors"
	"net/http"

	"clouddrive/internal/utils"
	"clouddrive/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pathID parses the :id parameter, writing a 400 when it is malformed.
func pathID(c *gin.Context, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+what+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// folderParam parses an optional folder reference from a query or form value.
func folderParam(c *gin.Context, value string) (*primitive.ObjectID, bool) {
	id, err := validators.ParseObjectID(value)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, request interface{}) bool {
	if err := c.ShouldBindJSON(request); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "request body too large")
			return false
		}
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func validationFailed(c *gin.Context, errs validators.ValidationErrors) bool {
	if len(errs) == 0 {
		return false
	}
	utils.ErrorResponseWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", errs[0].Message, errs.Details())
	return true
}
