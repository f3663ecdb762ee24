package stripper

import (
	"path/filepath"
	"strings"
)

// FileType identifies a supported source file extension.
type FileType string

const (
	JS  FileType = ".js"
	JSX FileType = ".jsx"
	TS  FileType = ".ts"
	TSX FileType = ".tsx"
)

// SupportedFileTypes lists every extension the stripper is meant for.
var SupportedFileTypes = []FileType{JS, JSX, TS, TSX}

// ParseFileType maps an extension (with leading dot) to a FileType.
func ParseFileType(ext string) (FileType, bool) {
	switch FileType(ext) {
	case JS, JSX, TS, TSX:
		return FileType(ext), true
	default:
		return "", false
	}
}

// FileTypeFromPath returns the FileType of path based on its extension.
func FileTypeFromPath(path string) (FileType, bool) {
	return ParseFileType(filepath.Ext(path))
}

// IsMarkup reports whether HTML-style comments can appear in this file type.
func (f FileType) IsMarkup() bool {
	return f == JSX || f == TSX
}

func (f FileType) String() string {
	return string(f)
}

// SupportedExtensions returns the supported extensions as a display string.
func SupportedExtensions() string {
	parts := make([]string, len(SupportedFileTypes))
	for i, f := range SupportedFileTypes {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}
