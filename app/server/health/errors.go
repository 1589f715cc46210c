package health

import "fmt"

type panicError struct {
	v any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.v)
}
