package controllers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// saveUpload stores an uploaded file under uploadDir/subdir with a uuid
// name and returns the path relative to the upload root, suitable for
// serving as a static URL.
func saveUpload(c *gin.Context, fh *multipart.FileHeader, uploadDir, subdir string) (string, error) {
	dir := filepath.Join(uploadDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	name := uuid.New().String() + filepath.Ext(fh.Filename)
	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}

	return filepath.ToSlash(filepath.Join(uploadDir, subdir, name)), nil
}
