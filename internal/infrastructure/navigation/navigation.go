// Package navigation implements the hand-off to the playback context.
package navigation

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RedirectNavigator hands off an HTTP request by answering 303 See Other.
// The status and Location header are staged on the response; the handler
// may still render a body with the same status.
type RedirectNavigator struct {
	c      *gin.Context
	target string
}

func NewRedirectNavigator(c *gin.Context) *RedirectNavigator {
	return &RedirectNavigator{c: c}
}

func (n *RedirectNavigator) Navigate(ctx context.Context, target string) error {
	if n.c.Writer.Written() {
		return fmt.Errorf("response already written, cannot redirect to %s", target)
	}
	n.target = target
	n.c.Header("Location", target)
	n.c.Status(http.StatusSeeOther)
	return nil
}

// Target is the last hand-off target, or "" if Navigate was never called.
func (n *RedirectNavigator) Target() string {
	return n.target
}

// WriterNavigator prints the hand-off target, for terminals.
type WriterNavigator struct {
	w io.Writer
}

func NewWriterNavigator(w io.Writer) *WriterNavigator {
	return &WriterNavigator{w: w}
}

func (n *WriterNavigator) Navigate(ctx context.Context, target string) error {
	_, err := fmt.Fprintf(n.w, "open %s\n", target)
	return err
}
