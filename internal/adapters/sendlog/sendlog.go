// Package sendlog provides the send log backends used for duplicate-send
// suppression.
package sendlog

import (
	"io"

	"github.com/mikey/coach-ops/internal/core"
)

// Log is a send log that holds a resource until closed
type Log interface {
	core.SendLog
	io.Closer
}
