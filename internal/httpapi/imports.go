package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"inkpad/internal/importer"

	"github.com/gin-gonic/gin"
)

type feedImportRequest struct {
	URL   string `json:"url"`
	Limit int    `json:"limit"`
}

func (s *Server) importMarkdown(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		s.uploadError(c, err)

		return
	}

	file, err := readUpload(header)
	if err != nil {
		s.uploadError(c, err)

		return
	}

	post, err := s.importer.ImportMarkdown(c.Request.Context(), currentUser(c).ID, file)
	if err != nil {
		s.respondError(c, "import markdown", err)

		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": post})
}

func (s *Server) importMarkdownBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		s.uploadError(c, err)

		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		BadRequest(c, "no files uploaded")

		return
	}

	files := make([]importer.File, 0, len(headers))
	for _, header := range headers {
		file, readErr := readUpload(header)
		if readErr != nil {
			s.uploadError(c, readErr)

			return
		}

		files = append(files, file)
	}

	result, err := s.importer.ImportMarkdownBatch(c.Request.Context(), currentUser(c).ID, files)
	if err != nil {
		s.respondError(c, "import markdown batch", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) importFeed(c *gin.Context) {
	var req feedImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.uploadError(c, err)

		return
	}

	if req.Limit <= 0 {
		req.Limit = importer.DefaultFeedItemLimit
	}

	result, err := s.importer.ImportFeed(c.Request.Context(), currentUser(c).ID, req.URL, req.Limit)
	if err != nil {
		s.respondError(c, "import feed", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// uploadError reports an oversized body as 413 and anything else as a bad
// request.
func (s *Server) uploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.respondError(c, "upload", err)

		return
	}

	BadRequest(c, "invalid upload: "+err.Error())
}

func readUpload(header *multipart.FileHeader) (importer.File, error) {
	f, err := header.Open()
	if err != nil {
		return importer.File{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return importer.File{}, fmt.Errorf("read upload: %w", err)
	}

	return importer.File{Name: header.Filename, Data: data}, nil
}
