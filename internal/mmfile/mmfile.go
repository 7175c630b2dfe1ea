// Package mmfile obtains the arena block from the operating system.
package mmfile

import "fmt"

func checkSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("mmfile: invalid arena size %d", size)
	}
	return nil
}
