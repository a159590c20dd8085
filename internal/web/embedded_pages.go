package web

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed templates/*
var EmbeddedTemplatesFS embed.FS

const indexPagePath = "templates/index.html"

// ListEmbeddedFiles returns a list of all embedded page files for debugging
func ListEmbeddedFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(EmbeddedTemplatesFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// loadEmbeddedPage reads a pre-authored page from the embedded filesystem
func loadEmbeddedPage(filePath string) ([]byte, error) {
	content, err := fs.ReadFile(EmbeddedTemplatesFS, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded page %s: %w", filePath, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("embedded page %s is empty", filePath)
	}
	return content, nil
}
