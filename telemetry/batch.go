package telemetry

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// record is the envelope written to the wire: one JSON object per
// line, tagged by kind so a single consumer stream can demultiplex
// the four event types.
type record struct {
	Kind        string            `json:"kind"`
	Operation   *OperationEvent   `json:"operation,omitempty"`
	Validation  *ValidationEvent  `json:"validation,omitempty"`
	Discovery   *DiscoveryEvent   `json:"discovery,omitempty"`
	Supervision *SupervisionEvent `json:"supervision,omitempty"`
}

// BatchSink buffers events in memory and flushes them as a single
// zstd-compressed frame to an underlying writer, either once
// BatchSize records have accumulated or when Flush is called
// explicitly. It is safe for concurrent use.
type BatchSink struct {
	mu        sync.Mutex
	w         io.Writer
	batchSize int
	buf       []record
	enc       *zstd.Encoder
}

// NewBatchSink wraps w. batchSize <= 0 disables automatic flushing;
// callers must call Flush themselves (e.g. on a maintenance tick).
func NewBatchSink(w io.Writer, batchSize int) (*BatchSink, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	return &BatchSink{w: w, batchSize: batchSize, enc: enc}, nil
}

func (b *BatchSink) Operation(e OperationEvent) {
	b.push(record{Kind: "operation", Operation: &e})
}

func (b *BatchSink) Validation(e ValidationEvent) {
	b.push(record{Kind: "validation", Validation: &e})
}

func (b *BatchSink) Discovery(e DiscoveryEvent) {
	b.push(record{Kind: "discovery", Discovery: &e})
}

func (b *BatchSink) Supervision(e SupervisionEvent) {
	b.push(record{Kind: "supervision", Supervision: &e})
}

func (b *BatchSink) push(r record) {
	b.mu.Lock()
	b.buf = append(b.buf, r)
	full := b.batchSize > 0 && len(b.buf) >= b.batchSize
	b.mu.Unlock()
	if full {
		_ = b.Flush()
	}
}

// Flush serializes and compresses every buffered record and writes
// the resulting frame to the underlying writer. A no-op if nothing is
// buffered.
func (b *BatchSink) Flush() error {
	b.mu.Lock()
	if len(b.buf) == 0 {
		b.mu.Unlock()
		return nil
	}
	pending := b.buf
	b.buf = nil
	b.mu.Unlock()

	var raw bytes.Buffer
	enc := json.NewEncoder(&raw)
	for _, r := range pending {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}

	compressed := b.enc.EncodeAll(raw.Bytes(), nil)
	_, err := b.w.Write(compressed)
	return err
}

// Len reports the number of records currently buffered, unflushed.
func (b *BatchSink) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// Close flushes any remaining records and releases the encoder.
func (b *BatchSink) Close() error {
	err := b.Flush()
	b.enc.Close()
	return err
}
