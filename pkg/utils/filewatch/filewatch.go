package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// UntilModifyContext returns a context that is canceled when the target
// file is modified (= written, created, removed, or renamed).
//
// The returned cancel function stops watching; it must be called
// even when the context is never canceled by a modification.
//
// If error is not nil, both the context and the cancel function are nil.
func UntilModifyContext(ctx context.Context, targetFilePath string) (context.Context, func(), error) {
	cctx, cancel := context.WithCancelCause(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return nil, nil, err
	}

	go func() {
		defer w.Close()

		select {
		case <-cctx.Done():
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			cancel(fmt.Errorf("%s is updated (%s)", event.Name, event.Op.String()))
		}
	}()

	if err := w.Add(targetFilePath); err != nil {
		cancel(err)
		return nil, nil, err
	}
	return cctx, func() { cancel(nil) }, nil
}
