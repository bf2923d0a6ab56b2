package telemetry

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noop "go.opentelemetry.io/otel/trace/noop"

	"github.com/semcore/semcore/tick"
)

func TestBatchSinkFlushesAtBatchSize(t *testing.T) {
	var out bytes.Buffer
	sink, err := NewBatchSink(&out, 2)
	require.NoError(t, err)

	sink.Operation(OperationEvent{OpKind: tick.OpShaclEval, ElapsedCycles: 5})
	assert.Equal(t, 1, sink.Len())
	sink.Operation(OperationEvent{OpKind: tick.OpOwlInfer, ElapsedCycles: 9, BudgetExceeded: true})
	assert.Equal(t, 0, sink.Len(), "batch should auto-flush once batchSize is reached")
	assert.Positive(t, out.Len())
}

func TestBatchSinkDecompressesToOriginalRecords(t *testing.T) {
	var out bytes.Buffer
	sink, err := NewBatchSink(&out, 0)
	require.NoError(t, err)

	sink.Validation(ValidationEvent{Conforms: true, NodesValidated: 3})
	sink.Discovery(DiscoveryEvent{CandidateName: "rdf:type", Confidence: 0.9, Promoted: true})
	require.NoError(t, sink.Flush())

	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()

	decompressed, err := dec.DecodeAll(out.Bytes(), nil)
	require.NoError(t, err)
	assert.Contains(t, string(decompressed), `"kind":"validation"`)
	assert.Contains(t, string(decompressed), `"kind":"discovery"`)
	assert.Contains(t, string(decompressed), `"rdf:type"`)
}

func TestBatchSinkFlushIsNoopWhenEmpty(t *testing.T) {
	var out bytes.Buffer
	sink, err := NewBatchSink(&out, 0)
	require.NoError(t, err)
	require.NoError(t, sink.Flush())
	assert.Zero(t, out.Len())
}

func TestMultiSinkFansOutToEveryMember(t *testing.T) {
	var a, b bytes.Buffer
	sinkA, err := NewBatchSink(&a, 0)
	require.NoError(t, err)
	sinkB, err := NewBatchSink(&b, 0)
	require.NoError(t, err)

	multi := MultiSink{sinkA, sinkB}
	multi.Supervision(SupervisionEvent{ActorID: 1, Strategy: "one_for_one", Success: true})
	require.NoError(t, sinkA.Flush())
	require.NoError(t, sinkB.Flush())

	assert.Positive(t, a.Len())
	assert.Positive(t, b.Len())
}

func TestOTelSinkRecordsWithoutPanicking(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("semcore-test")
	sink := NewOTelSink(tracer, "test-lifetime")
	defer sink.Close()

	sink.Operation(OperationEvent{OpKind: tick.OpMailboxEnqueue, ElapsedCycles: 4})
	sink.Validation(ValidationEvent{Conforms: false, Counts: ValidationCounts{Violation: 2}})
	sink.Discovery(DiscoveryEvent{CandidateName: "ex:Label", Promoted: false})
	sink.Supervision(SupervisionEvent{ActorID: 7, Strategy: "rest_for_one"})
}
