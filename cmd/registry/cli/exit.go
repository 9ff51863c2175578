package cli

import "strconv"

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
}

func (e ExitError) Error() string {
	return "exit status " + strconv.Itoa(e.Code)
}
