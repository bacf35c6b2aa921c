package convert

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

// headerSize is enough for filetype to recognize any of known formats.
const headerSize = 262

// hasExtension reports if name has one of extensions, ignoring case. Empty
// extensions accept any name.
func hasExtension(name string, extensions []string) bool {
	return len(extensions) == 0 || slices.ContainsFunc(extensions, func(ext string) bool {
		return strings.EqualFold(ext, filepath.Ext(name))
	})
}

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

// isDocumentFile reports if path has one of extensions and does not look
// like known binary format.
func isDocumentFile(path string, extensions []string) (bool, error) {
	if !hasExtension(path, extensions) {
		return false, nil
	}
	head, err := readHeader(path)
	if err != nil {
		return false, err
	}
	kind, _ := filetype.Match(head)
	return kind == filetype.Unknown, nil
}

// isArchiveFile reports if path is zip archive with ".zip" extension.
// Other zip based formats (docx, epub) are not archives for our purposes.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head, err := readHeader(path)
	if err != nil {
		return false, err
	}
	return filetype.IsType(head, matchers.TypeZip), nil
}
