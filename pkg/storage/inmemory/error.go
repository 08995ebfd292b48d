package inmemory

import "fmt"

type dimensionError struct {
	want, got int
}

func (e dimensionError) Error() string {
	return fmt.Sprintf("different vector dimensions %d and %d", e.want, e.got)
}
