package tasks

import (
	"errors"
	"fmt"
)

type TaskNotFoundError struct {
	Name string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task '%s' not found", e.Name)
}

func IsTaskNotFound(err error) bool {
	var nf TaskNotFoundError
	return errors.As(err, &nf)
}
