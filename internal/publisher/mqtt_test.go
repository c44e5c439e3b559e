package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"chemequip/internal/models"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient embeds the interface so only the methods under test need bodies.
type fakeClient struct {
	mqtt.Client
	messages []published
	err      error
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.messages = append(c.messages, published{topic, qos, retained, payload.([]byte)})
	return doneToken{err: c.err}
}

func TestPublishUpload(t *testing.T) {
	client := &fakeClient{}
	p := newWithClient(client, "plant-a")

	entry := models.UploadHistory{
		FileName:     "pumps.csv",
		TotalRecords: 3,
		UploadedAt:   time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	if err := p.PublishUpload(context.Background(), entry); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(client.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(client.messages))
	}
	msg := client.messages[0]
	if msg.topic != "plant-a/uploads" || msg.qos != 1 || msg.retained {
		t.Fatalf("unexpected publish parameters %+v", msg)
	}

	var event UploadEvent
	if err := json.Unmarshal(msg.payload, &event); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if event.FileName != "pumps.csv" || event.TotalRecords != 3 || !event.UploadedAt.Equal(entry.UploadedAt) {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestPublishUploadBrokerError(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	p := newWithClient(client, "")

	err := p.PublishUpload(context.Background(), models.UploadHistory{FileName: "x.csv"})
	if err == nil {
		t.Fatal("expected broker error")
	}
	if p.UploadTopic() != "chemequip/uploads" {
		t.Fatalf("unexpected default topic %q", p.UploadTopic())
	}
}

func TestNewRequiresBroker(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without broker")
	}
}

func TestNewFailsFastWhenBrokerUnreachable(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		_, err := New(Config{Broker: "127.0.0.1:1", ConnectTimeout: time.Second})
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected a connection error")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("New blocked on an unreachable broker")
	}
}
