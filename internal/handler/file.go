package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// FileHandler serves repository contents.
type FileHandler struct {
	*BaseHandler
	browser Browser
}

func NewFileHandler(browser Browser, logger *logrus.Logger) *FileHandler {
	return &FileHandler{
		BaseHandler: NewBaseHandler(logger),
		browser:     browser,
	}
}

// ListFiles handles GET /repositories/:owner/:repo/files?path=.
func (h *FileHandler) ListFiles(c echo.Context) error {
	owner, repo := c.Param("owner"), c.Param("repo")
	var path string
	logEntry := h.logRequest(c, "list_files").WithFields(logrus.Fields{"owner": owner, "repo": repo})
	if err := bindQuery(c, "path", &path); err != nil {
		return h.fail(c, logEntry, err, "Invalid path")
	}
	logEntry = logEntry.WithField("file_path", path)

	items, err := h.browser.ListFiles(c.Request().Context(), owner, repo, path)
	if err != nil {
		return h.fail(c, logEntry, err, "Failed to list files")
	}

	logEntry.WithField("count", len(items)).Info("Files listed")
	return c.JSON(http.StatusOK, items)
}

// GetFileContent handles GET /repositories/:owner/:repo/files/*.
func (h *FileHandler) GetFileContent(c echo.Context) error {
	owner, repo, path := c.Param("owner"), c.Param("repo"), wildcardPath(c)
	logEntry := h.logRequest(c, "get_file_content").WithFields(logrus.Fields{"owner": owner, "repo": repo, "file_path": path})

	content, err := h.browser.GetFileContent(c.Request().Context(), owner, repo, path)
	if err != nil {
		return h.fail(c, logEntry, err, "Failed to get file content")
	}

	logEntry.WithField("size", content.Size).Info("File content retrieved")
	return c.JSON(http.StatusOK, content)
}
