package main

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/noteshq/notesctl/internal/models"
)

type server struct {
	store  *noteStore
	minter *tokenMinter
	debug  bool
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (s *server) handleLogin(c echo.Context) error {
	var creds credentialsRequest
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "malformed request body"})
	}
	if !s.store.checkCredentials(creds.Username, creds.Password) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
	}
	access, refresh, err := s.minter.mintPair(creds.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *server) handleRefresh(c echo.Context) error {
	var body refreshRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "malformed request body"})
	}
	username, err := s.minter.verify(body.Refresh, "refresh")
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
	}
	access, err := s.minter.mint(username, "access", s.minter.accessTTL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"access": access})
}

func (s *server) handleListNotes(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.list(usernameFromContext(c)))
}

func (s *server) handleCreateNote(c echo.Context) error {
	var fields models.NoteFields
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "malformed request body"})
	}
	if err := fields.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": err.Error()})
	}
	return c.JSON(http.StatusCreated, s.store.create(usernameFromContext(c), fields))
}

func (s *server) handleGetNote(c echo.Context) error {
	note, found := s.store.get(usernameFromContext(c), c.Param("id"))
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
	return c.JSON(http.StatusOK, note)
}

func (s *server) handleUpdateNote(c echo.Context) error {
	var fields models.NoteFields
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "malformed request body"})
	}
	if err := fields.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": err.Error()})
	}
	note, found := s.store.update(usernameFromContext(c), c.Param("id"), fields)
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
	return c.JSON(http.StatusOK, note)
}

func (s *server) handleDeleteNote(c echo.Context) error {
	if !s.store.remove(usernameFromContext(c), c.Param("id")) {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *server) handleHealth(c echo.Context) error {
	payload := models.HealthStatus{Status: "ok"}
	switch c.QueryParam("checks") {
	case "1", "true", "yes":
		// the in-memory store has no database, report it as always fine
		payload.DB = "ok"
		payload.Debug = s.debug
		hostname, _ := os.Hostname()
		payload.Hostname = hostname
		payload.Commit = os.Getenv("GIT_COMMIT_SHA")
		payload.App = "stubserver"
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *server) registerHandlers(e *echo.Echo, loginMiddlewares ...echo.MiddlewareFunc) {
	e.POST("/auth/token/", s.handleLogin, loginMiddlewares...)
	e.POST("/auth/refresh/", s.handleRefresh)
	e.GET("/health/", s.handleHealth)
	authed := e.Group("", s.minter.authMiddleware())
	authed.GET("/notes/", s.handleListNotes)
	authed.POST("/notes/", s.handleCreateNote)
	authed.GET("/notes/:id/", s.handleGetNote)
	authed.PUT("/notes/:id/", s.handleUpdateNote)
	authed.DELETE("/notes/:id/", s.handleDeleteNote)
}
