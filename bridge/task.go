// File: bridge/task.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bridge

import "fmt"

// Task is one pending transmission. It is created on the real-time thread
// and consumed once by the task handler.
type Task struct {
	Index int
	Value float32
}

func (t Task) String() string {
	return fmt.Sprintf("/%d %g", t.Index, t.Value)
}
