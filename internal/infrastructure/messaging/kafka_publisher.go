// Package messaging publica los eventos del ciclo de vida de documentos en Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/erp-inventario/internal/application/documents"
)

var _ documents.EventPublisher = (*KafkaPublisher)(nil)

// Writer subconjunto de *kafka.Writer usado por el publicador.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher serializa cada evento a JSON con el ID del documento como llave,
// de modo que los eventos de un mismo documento conservan el orden en la partición.
type KafkaPublisher struct {
	w Writer
}

// NewKafkaPublisher envuelve un writer existente.
func NewKafkaPublisher(w Writer) *KafkaPublisher { return &KafkaPublisher{w: w} }

// NewKafkaWriter construye el writer para los brokers y el tópico indicados.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

// Publish envía el evento. El contexto limita el tiempo de espera del broker.
func (p *KafkaPublisher) Publish(ctx context.Context, evt documents.DocumentEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.DocumentID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
			{Key: "document_kind", Value: []byte(evt.Kind)},
		},
		Time: evt.OccurredAt,
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// Close libera el writer.
func (p *KafkaPublisher) Close() error { return p.w.Close() }
