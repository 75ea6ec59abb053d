package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/messaging"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := messaging.NewKafkaPublisher(w)
	evt := documents.DocumentEvent{
		Type:       documents.EventDocumentConfirmed,
		Kind:       "SALE",
		DocumentID: "doc-1",
		Status:     "CONFIRMED",
		Lines:      []documents.EventLine{{ProductID: "p-1", Quantity: 10}},
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, p.Publish(context.Background(), evt))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "doc-1", string(w.msgs[0].Key))

	var got documents.DocumentEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, evt.Type, got.Type)
	assert.Equal(t, evt.Lines, got.Lines)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker caído")
	p := messaging.NewKafkaPublisher(&fakeWriter{err: boom})
	err := p.Publish(context.Background(), documents.DocumentEvent{Type: documents.EventDocumentCancelled, DocumentID: "x"})
	assert.ErrorIs(t, err, boom)
}
