package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskdeck-api/domain"
)

func createProject(svc domain.ProjectService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := auth.SubjectFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var in domain.ProjectInput
		if err := decodeBody(c, &in); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		summary, err := svc.Create(c.Request().Context(), in, email)
		if err != nil {
			return writeDomainError(c, err)
		}
		publishActivity(domain.Activity{Type: domain.ActivityProjectCreated, UserEmail: email, EntityID: summary.ID})
		return c.JSON(http.StatusOK, summary)
	}
}

func listProjects(svc domain.ProjectService, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		email, authErr := auth.SubjectFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		search := c.QueryParam("search")
		metrics.SetSearchProvided(search != "")

		page, ok := queryInt(c, "page")
		if !ok {
			metrics.SetErrorStage("invalid_page")
			err = c.String(http.StatusBadRequest, "invalid page")
			return err
		}
		limit, ok := queryInt(c, "limit")
		if !ok {
			metrics.SetErrorStage("invalid_limit")
			err = c.String(http.StatusBadRequest, "invalid limit")
			return err
		}

		fetchStart := time.Now()
		result, svcErr := svc.List(ctx, email, search, page, limit)
		metrics.ObserveFetch(time.Since(fetchStart))
		if svcErr != nil {
			metrics.SetErrorStage("storage")
			err = writeDomainError(c, svcErr)
			return err
		}
		metrics.SetProjectsReturned(len(result.Projects))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, result)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getProject(svc domain.ProjectService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := auth.SubjectFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		summary, err := svc.Get(c.Request().Context(), c.Param("id"), email)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, summary)
	}
}

func updateProject(svc domain.ProjectService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := auth.SubjectFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var in domain.ProjectInput
		if err := decodeBody(c, &in); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		summary, err := svc.Update(c.Request().Context(), c.Param("id"), in, email)
		if err != nil {
			return writeDomainError(c, err)
		}
		publishActivity(domain.Activity{Type: domain.ActivityProjectUpdated, UserEmail: email, EntityID: summary.ID})
		return c.JSON(http.StatusOK, summary)
	}
}

func deleteProject(svc domain.ProjectService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := auth.SubjectFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id := c.Param("id")
		if err := svc.Delete(c.Request().Context(), id, email); err != nil {
			return writeDomainError(c, err)
		}
		publishActivity(domain.Activity{Type: domain.ActivityProjectDeleted, UserEmail: email, EntityID: id})
		return c.NoContent(http.StatusNoContent)
	}
}

// queryInt parses a non-negative integer query parameter; a missing parameter
// reads as zero.
func queryInt(c echo.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
