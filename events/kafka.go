package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Govind-619/JewelSphere/utils"
	"github.com/IBM/sarama"
)

// KafkaPublisher sends events to a single topic keyed by order id, so all
// events of one order land on the same partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaProducer dials the brokers, retrying while they come up.
func NewKafkaProducer(brokers []string, attempts int, wait time.Duration) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	var producer sarama.SyncProducer
	var err error
	for i := 1; i <= attempts; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			utils.LogInfo("Kafka producer connected to %v", brokers)
			return producer, nil
		}
		utils.LogError("Waiting for Kafka... (%d/%d) Error: %v", i, attempts, err)
		time.Sleep(wait)
	}
	return nil, fmt.Errorf("failed to start kafka producer: %w", err)
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (k *KafkaPublisher) Publish(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	}
	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s event: %w", event.Type, err)
	}
	utils.LogDebug("Published %s for order %s to %s[%d]@%d", event.Type, event.OrderID, k.topic, partition, offset)
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}
