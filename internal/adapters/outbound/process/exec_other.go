//go:build !unix

package process

import (
	"errors"
	"runtime"
)

func systemExec(_ string, _ []string, _ []string) error {
	return errors.New("exec-replacement is not supported on " + runtime.GOOS)
}
