// Package util is a grab bag for the binary: log files and config files.
package util

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// OpenLog opens path for appending, falling back to discarding with a warning.
func OpenLog(path string, mode os.FileMode) (file io.Writer) {

	var err error
	file, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, mode)
	if err != nil {
		fmt.Printf("warning: %s\n", err.Error())
		file = io.Discard
	}

	return
}

func CloseLog(file io.Writer) {

	actually, ok := file.(*os.File)
	if ok {
		actually.Close()
	}
}

func WriteConfig(cfg any, path string, mode os.FileMode) (err error) {

	data, err := yaml.Marshal(cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to marshal")
		return
	}

	err = os.WriteFile(path, data, mode)
	err = errors.Wrapf(err, "failed to write to %s", path)
	return
}

// SampleConfig writes cfg to path unless a file is already there.
func SampleConfig(cfg any, path string, mode os.FileMode) (written bool, err error) {

	_, err = os.Stat(path)
	if err == nil {
		return // already have a cfg
	}
	if !errors.Is(err, os.ErrNotExist) {
		err = errors.Wrapf(err, "failed to stat %s", path)
		return
	}

	err = WriteConfig(cfg, path, mode)
	written = err == nil
	return
}
