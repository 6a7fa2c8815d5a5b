package util

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	_ "github.com/viant/afsc/s3"
)

// FileSystem is the process-wide abstract file service. The s3 scheme is
// registered so model bundles can live in object storage.
var FileSystem = afs.New()

func ReadFileBytes(filename string) ([]byte, error) {
	file, err := FileSystem.OpenURL(context.Background(), filename)
	if err != nil {
		return nil, err
	}
	defer func(file io.Closer) {
		err = errors.Join(err, CloseFile(file))
	}(file)

	outBytes, readErr := io.ReadAll(file)
	if readErr != nil {
		return nil, readErr
	}
	return outBytes, err
}

func CloseFile(file io.Closer) error {
	return file.Close()
}

func OpenFile(filename string) (io.ReadCloser, error) {
	return FileSystem.OpenURL(context.Background(), filename)
}

func FileExists(filename string) (bool, error) {
	return FileSystem.Exists(context.Background(), filename)
}

// WriteFileBytes writes data to filename, creating it with 0644.
func WriteFileBytes(filename string, data []byte) error {
	return FileSystem.Upload(context.Background(), filename, 0644, bytes.NewReader(data))
}

// CopyFile copies the contents of src to dest through the abstract file
// service, so either end may be an object-store URL.
func CopyFile(src string, dest string) error {
	data, err := ReadFileBytes(src)
	if err != nil {
		return err
	}
	return WriteFileBytes(dest, data)
}

func GetPathType(path string) string {
	if strings.HasPrefix(path, "s3://") {
		return "S3"
	}
	return "os"
}

// PathJoinSafe wraps filepath.Join to ensure that paths are correctly
// constructed: normal OS paths go through filepath.Join, s3 URLs are built
// manually so the scheme's double slash is preserved.
func PathJoinSafe(elem ...string) string {
	var path string

	switch GetPathType(elem[0]) {
	case "S3":
		basePath := strings.TrimSuffix(elem[0], "/")
		path = basePath + string(filepath.Separator) + filepath.Join(elem[1:]...)
	default:
		path = filepath.Join(elem...)
	}
	return path
}
