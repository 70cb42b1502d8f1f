package command

import "fmt"

// ArgumentError reports a command invoked with too few arguments.
type ArgumentError struct {
	Command string
	Usage   string
	Want    int
	Got     int
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("Missing arguments for `%s`: usage `%s`", e.Command, e.Usage)
}
