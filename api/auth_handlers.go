package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskdeck-api/domain"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func registerUser(svc domain.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		user, err := svc.Register(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return writeDomainError(c, err)
		}
		publishActivity(domain.Activity{Type: domain.ActivityUserRegistered, UserEmail: user.Email, EntityID: user.ID})
		return c.JSON(http.StatusOK, messageResponse{Message: "User registered successfully"})
	}
}

func loginUser(svc domain.AuthService, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		user, err := svc.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return writeDomainError(c, err)
		}
		token, _, err := auth.IssueToken(user.Email)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to issue token")
		}
		return c.JSON(http.StatusOK, authResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			UserID:      user.ID,
			Email:       user.Email,
		})
	}
}
