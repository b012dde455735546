package output

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/chrisdamba/foodmatch/internal/models"
)

type KafkaOutput struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaOutput sends every message to topic. An empty topic keeps the one
// each message is written under.
func NewKafkaOutput(producer sarama.SyncProducer, topic string) *KafkaOutput {
	return &KafkaOutput{producer: producer, topic: topic}
}

func NewSaramaProducer(cfg models.KafkaConfig, logger *slog.Logger) (sarama.SyncProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokerList := strings.Split(cfg.BrokerList, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}

	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}
	logger.Info("kafka producer connected", "brokers", brokerList)
	return producer, nil
}

// WriteMessage keys each message by recommendation id so one recommendation
// lands on one partition in rank order.
func (k *KafkaOutput) WriteMessage(topic string, msg []byte) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}
	target := topic
	if k.topic != "" {
		target = k.topic
	}
	pm := &sarama.ProducerMessage{
		Topic: target,
		Value: sarama.ByteEncoder(msg),
	}
	if event, err := decodeEvent(topic, msg); err == nil && event.RecommendationID != "" {
		pm.Key = sarama.StringEncoder(event.RecommendationID)
	}
	if _, _, err := k.producer.SendMessage(pm); err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", target, err)
	}
	return nil
}

func (k *KafkaOutput) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}
