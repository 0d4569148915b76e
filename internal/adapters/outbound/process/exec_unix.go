//go:build unix

package process

import "golang.org/x/sys/unix"

func systemExec(argv0 string, argv []string, envv []string) error {
	return unix.Exec(argv0, argv, envv)
}
