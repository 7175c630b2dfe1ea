//go:build !unix

package mmfile

import "os"

// Anonymous allocates size zeroed bytes from the Go heap when mmap is not available.
func Anonymous(size int) ([]byte, func() error, error) {
	if err := checkSize(size); err != nil {
		return nil, nil, err
	}
	return make([]byte, size), func() error { return nil }, nil
}

// Map allocates size bytes on the heap and writes them to path on cleanup.
func Map(path string, size int) ([]byte, func() error, error) {
	if err := checkSize(size); err != nil {
		return nil, nil, err
	}
	data := make([]byte, size)
	return data, func() error { return os.WriteFile(path, data, 0o644) }, nil
}
