package cli

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/sidrisov/payflow-sub001/internal/notify"
)

// consoleSurface renders transfer notifications as status lines on the
// terminal. Each created notification gets a numbered handle so updates
// stay attributable when output is captured.
type consoleSurface struct {
	w      io.Writer
	nextID atomic.Uint64
}

func newConsoleSurface(w io.Writer) *consoleSurface {
	return &consoleSurface{w: w}
}

func (s *consoleSurface) Create(content string) (notify.Handle, error) {
	id := s.nextID.Add(1)
	handle := notify.Handle(fmt.Sprintf("n%d", id))
	_, err := fmt.Fprintf(s.w, "[%s] %s\n", handle, content)
	return handle, err
}

func (s *consoleSurface) Update(handle notify.Handle, content string, terminal notify.TerminalKind) error {
	prefix := ""
	switch terminal {
	case notify.TerminalSuccess:
		prefix = "✅ "
	case notify.TerminalError:
		prefix = "❌ "
	case notify.TerminalNone:
	}
	_, err := fmt.Fprintf(s.w, "[%s] %s%s\n", handle, prefix, content)
	return err
}

var _ notify.Surface = (*consoleSurface)(nil)
