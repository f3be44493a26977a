package registry

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrCorruptArchive is returned when an upload is not a zip archive.
	ErrCorruptArchive = errors.New("uploaded file appears corrupt: not a valid zip file")
	// ErrArchiveMemberCount is returned when an archive does not hold
	// exactly one file.
	ErrArchiveMemberCount = errors.New("uploaded file appears corrupt: valid zip file but does not contain exactly one file")
)

// Extract returns the contents of the single file inside a zip archive.
func Extract(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, ErrCorruptArchive
	}
	if len(zr.File) != 1 {
		return nil, ErrArchiveMemberCount
	}

	f, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer f.Close()

	out, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return out, nil
}
