package process

import (
	"strings"
	"sync"
)

// Output accumulates the decoded text of one stream for a single run.
// The owning drain goroutine is the only writer; readers may inspect it
// at any time.
type Output struct {
	mu     sync.Mutex
	buf    strings.Builder
	chunks int
}

// AppendChunk appends one decoded chunk followed by a newline separator.
func (o *Output) AppendChunk(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf.WriteString(text)
	o.buf.WriteByte('\n')
	o.chunks++
}

// String returns the text accumulated so far.
func (o *Output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

// Len returns the number of bytes accumulated so far.
func (o *Output) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Len()
}

// Chunks returns how many chunks have been appended.
func (o *Output) Chunks() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.chunks
}
