package validation

import (
	"errors"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxFileSize caps a video file when no upload limit is configured.
const MaxFileSize = 500 << 20

const maxFilenameLen = 255

const octetStream = "application/octet-stream"

var (
	ErrFileTooLarge    = errors.New("This video is too large to upload.")
	ErrInvalidFileType = errors.New("Please choose an MP4, MOV, WebM or MKV video.")
	ErrFilenameTooLong = errors.New("The file name is too long. Rename it and try again.")
	ErrEmptyFile       = errors.New("The selected file is empty.")
)

// videoExtensions is the set of accepted video containers keyed by extension.
var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// AllowedMimeTypes is every media type an uploaded video may declare.
var AllowedMimeTypes = func() map[string]bool {
	m := make(map[string]bool, len(videoExtensions))
	for _, ct := range videoExtensions {
		m[ct] = true
	}
	return m
}()

// ValidateUpload rejects empty, oversized, badly named or non-video files.
// maxSize <= 0 means MaxFileSize.
func ValidateUpload(fh *multipart.FileHeader, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = MaxFileSize
	}
	switch {
	case fh.Size == 0:
		return ErrEmptyFile
	case fh.Size > maxSize:
		return ErrFileTooLarge
	case len(fh.Filename) > maxFilenameLen:
		return ErrFilenameTooLong
	case !AllowedMimeTypes[ContentType(fh)]:
		return ErrInvalidFileType
	}
	return nil
}

// ContentType is the declared media type of fh without parameters, falling back
// to the file extension when the browser sent nothing useful.
func ContentType(fh *multipart.FileHeader) string {
	declared := fh.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != octetStream {
		return mt
	}
	return GuessContentType(fh.Filename)
}

// GuessContentType maps a filename extension to a video media type.
func GuessContentType(filename string) string {
	if ct, ok := videoExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return octetStream
}
