//go:build !(linux || darwin)

package datafs

import "errors"

func mount(image, dir string) error {
	return errors.New("fuse mount is not supported on this platform")
}
