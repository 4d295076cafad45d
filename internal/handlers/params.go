package handlers

import (
	"net/http"
	"strconv"

	"restopos/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// identity returns the tenant and acting user of an authenticated request
func identity(c echo.Context) (tenantID, userID uuid.UUID, err error) {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
	}
	userID, ok = common.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	return tenantID, userID, nil
}

// pathUUID parses the named path parameter. Errors are field errors, so
// common.RespondError renders them as validation failures.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, common.InvalidValue(name, "%s", err.Error())
	}
	return id, nil
}

// pagination reads the limit and offset query parameters
func pagination(c echo.Context) (limit, offset int, err error) {
	if v := c.QueryParam("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, common.InvalidValue("limit", "limit must be a number")
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			return 0, 0, common.InvalidValue("offset", "offset must be a number")
		}
	}
	limit, offset, err = common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return 0, 0, common.InvalidValue("offset", "%s", err.Error())
	}
	return limit, offset, nil
}

// bindJSON decodes the request body, reporting malformed payloads as
// validation failures on "body"
func bindJSON(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return common.InvalidValue("body", "invalid request format")
	}
	return nil
}
