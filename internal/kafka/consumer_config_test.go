package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestConsumerConfig_ReaderConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		startOffset string
		wantOffset  int64
	}{
		{"first", "first", kafkago.FirstOffset},
		{"first mixed case and spaces", " FiRsT \n", kafkago.FirstOffset},
		{"earliest alias", "earliest", kafkago.FirstOffset},
		{"empty -> last", "", kafkago.LastOffset},
		{"last", "LAST", kafkago.LastOffset},
		{"unknown -> last", "newest", kafkago.LastOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := ConsumerConfig{
				Brokers:     []string{"k1:9092", "k2:9092"},
				Topic:       "orders.placements",
				GroupID:     "salesops",
				StartOffset: tt.startOffset,
			}

			rc := cfg.ReaderConfig()

			require.Equal(t, tt.wantOffset, rc.StartOffset)
			require.Equal(t, cfg.Brokers, rc.Brokers)
			require.Equal(t, "orders.placements", rc.Topic)
			require.Equal(t, "salesops", rc.GroupID)
			require.Zero(t, rc.CommitInterval, "offsets are committed manually")
			require.Equal(t, readerMaxWait, rc.MaxWait)
		})
	}
}

func TestConsumerConfig_Validate(t *testing.T) {
	t.Parallel()

	ok := ConsumerConfig{Brokers: []string{"k:9092"}, Topic: "orders.placements", GroupID: "salesops"}
	require.NoError(t, ok.Validate())

	empty := ConsumerConfig{Topic: "  "}
	err := empty.Validate()
	require.Error(t, err)
	require.ErrorContains(t, err, "no brokers")
	require.ErrorContains(t, err, "empty topic")
	require.ErrorContains(t, err, "empty group id")
}

func TestConsumerConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	got := ConsumerConfig{}.withDefaults()
	require.Equal(t, defaultProcessTimeout, got.ProcessTimeout)
	require.Equal(t, defaultRetryInitial, got.RetryInitial)
	require.Equal(t, defaultRetryMax, got.RetryMax)

	// RetryMax не может быть меньше стартового интервала
	got = ConsumerConfig{RetryInitial: 10 * time.Second, RetryMax: time.Second}.withDefaults()
	require.Equal(t, 10*time.Second, got.RetryMax)

	// Заданные значения не трогаются
	got = ConsumerConfig{ProcessTimeout: 2 * time.Second}.withDefaults()
	require.Equal(t, 2*time.Second, got.ProcessTimeout)
}
