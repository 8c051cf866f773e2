package api

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskdeck-api/domain"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Store, auth Authenticator, projectPageSize int, logger *log.Logger) {
	authSvc := domain.NewAuthService(store)
	projectSvc := domain.NewProjectService(store, store, store, projectPageSize)
	taskSvc := domain.NewTaskService(store, store)

	e.POST("/auth/register", registerUser(authSvc))
	e.POST("/auth/login", loginUser(authSvc, auth))

	e.POST("/projects", createProject(projectSvc, auth))
	e.GET("/projects", listProjects(projectSvc, auth, logger))
	e.GET("/projects/:id", getProject(projectSvc, auth))
	e.PUT("/projects/:id", updateProject(projectSvc, auth))
	e.DELETE("/projects/:id", deleteProject(projectSvc, auth))

	e.POST("/projects/:id/tasks", createTask(taskSvc, auth))
	e.GET("/projects/:id/tasks", listTasks(taskSvc, auth))
	e.PUT("/tasks/:id", updateTask(taskSvc, auth))
	e.DELETE("/tasks/:id", deleteTask(taskSvc, auth))
	e.PATCH("/tasks/:id/complete", completeTask(taskSvc, auth))
	e.PATCH("/tasks/:id/incomplete", reopenTask(taskSvc, auth))

	e.GET("/healthz", healthz())

	initActivitySender(store, logger)
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// decodeBody decodes a bounded JSON request body, rejecting unknown fields.
func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
