package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskdeck-api/domain"
)

func createTask(svc domain.TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := auth.SubjectFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var in domain.TaskInput
		if err := decodeBody(c, &in); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		task, err := svc.Create(c.Request().Context(), c.Param("id"), in, email)
		if err != nil {
			return writeDomainError(c, err)
		}
		publishActivity(domain.Activity{Type: domain.ActivityTaskCreated, UserEmail: email, EntityID: task.ID, ProjectID: task.ProjectID})
		return c.JSON(http.StatusOK, task)
	}
}

func listTasks(svc domain.TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := auth.SubjectFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		tasks, err := svc.ListByProject(c.Request().Context(), c.Param("id"), email)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, tasks)
	}
}

func updateTask(svc domain.TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := auth.SubjectFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var in domain.TaskInput
		if err := decodeBody(c, &in); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		task, err := svc.Update(c.Request().Context(), c.Param("id"), in, email)
		if err != nil {
			return writeDomainError(c, err)
		}
		publishActivity(domain.Activity{Type: domain.ActivityTaskUpdated, UserEmail: email, EntityID: task.ID, ProjectID: task.ProjectID})
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(svc domain.TaskService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := auth.SubjectFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id := c.Param("id")
		if err := svc.Delete(c.Request().Context(), id, email); err != nil {
			return writeDomainError(c, err)
		}
		publishActivity(domain.Activity{Type: domain.ActivityTaskDeleted, UserEmail: email, EntityID: id})
		return c.NoContent(http.StatusNoContent)
	}
}

func completeTask(svc domain.TaskService, auth Authenticator) echo.HandlerFunc {
	return setTaskCompletion(svc, auth, true)
}

func reopenTask(svc domain.TaskService, auth Authenticator) echo.HandlerFunc {
	return setTaskCompletion(svc, auth, false)
}

func setTaskCompletion(svc domain.TaskService, auth Authenticator, completed bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := auth.SubjectFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var task *domain.Task
		if completed {
			task, err = svc.MarkCompleted(c.Request().Context(), c.Param("id"), email)
		} else {
			task, err = svc.MarkIncomplete(c.Request().Context(), c.Param("id"), email)
		}
		if err != nil {
			return writeDomainError(c, err)
		}
		activityType := domain.ActivityTaskReopened
		if completed {
			activityType = domain.ActivityTaskCompleted
		}
		publishActivity(domain.Activity{Type: activityType, UserEmail: email, EntityID: task.ID, ProjectID: task.ProjectID})
		return c.JSON(http.StatusOK, task)
	}
}
