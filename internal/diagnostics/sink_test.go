package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDegradesMissingPlaceholder(t *testing.T) {
	d := New(XMLMissingAttribute, Error, Fields{Tag: "ObjectFifo"})
	assert.Contains(t, d.Message, "missing: attr")
}

func TestNewFillsAllPlaceholders(t *testing.T) {
	d := New(XMLMissingAttribute, Error, Fields{Tag: "ObjectFifo", Attr: "depth"})
	assert.Equal(t, "element <ObjectFifo> is missing required attribute depth", d.Message)
}

func TestWriterSinkHumanFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf, FormatHuman, false)
	sink.Emit(New(SymDuplicate, Warn, Fields{Symbol: "chunk_ty"}))
	out := buf.String()
	require.True(t, strings.Contains(out, "SYM001"))
	assert.True(t, strings.Contains(out, "WARN"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "chunk_ty is already declared"))
}

func TestCollectingSinkHasSeverity(t *testing.T) {
	sink := NewCollectingSink()
	sink.Emit(New(GraphRuleFailed, Error, Fields{Node: "n1", Reason: "missing base edge"}))
	assert.True(t, sink.HasSeverity(Error))
	assert.False(t, sink.HasSeverity(Warn))
	require.Len(t, sink.Items(), 1)
}
