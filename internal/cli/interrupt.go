package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels long-running scans (import, backup, restore) on
// SIGINT/SIGTERM with a friendly message. Writes already inside a
// transaction are not interrupted.
type InterruptHandler struct {
	writer      io.Writer
	cancelFunc  context.CancelFunc
	operation   string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates an interrupt handler for the named operation.
func NewInterruptHandler(writer io.Writer, operation string) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{writer: writer, operation: operation}
}

// HandleInterrupts sets up signal handling and returns a context that will
// be canceled on interrupt.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.cancelFunc = cancel

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		h.mu.Lock()
		if !h.interrupted {
			h.interrupted = true
			h.showInterruptMessage()
		}
		h.mu.Unlock()
		cancel()
	}()

	return ctx
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning(h.operation+" interrupted!") +
		"\n" + FormatInfo("Committed changes are preserved.") + "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		// Best effort - we're shutting down anyway
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
