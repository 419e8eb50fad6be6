package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/baysim/core/model"
)

func records(n int) []model.OutputRecord {
	recs := make([]model.OutputRecord, n)
	for i := range recs {
		recs[i] = model.OutputRecord{
			TimeIndex:    i + 1,
			Bays:         []model.VehicleClass{model.ClassTruck},
			TotalTrucks:  1,
			TotalPowerMW: 0.35,
			TimestepType: "summer-weekend-daytime",
		}
	}
	return recs
}

func TestRecordProducer_Append(t *testing.T) {
	cfg := Config{Brokers: "localhost:9092", BatchSize: 2}
	sp := mocks.NewSyncProducer(t, cfg.SaramaConfig())
	var seen []int
	for i := 0; i < 3; i++ {
		sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(v []byte) error {
			var m struct {
				RunID     string `json:"run_id"`
				TimeIndex int    `json:"time_index"`
			}
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			if m.RunID != "run-1" {
				return fmt.Errorf("unexpected run %q", m.RunID)
			}
			seen = append(seen, m.TimeIndex)
			return nil
		})
	}

	p := NewRecordProducerWith(sp, cfg)
	require.NoError(t, p.Append(context.Background(), "run-1", records(3)))
	assert.Equal(t, []int{1, 2, 3}, seen)
	require.NoError(t, p.Close())
}

func TestRecordProducer_Failure(t *testing.T) {
	cfg := Config{Brokers: "localhost:9092"}
	sp := mocks.NewSyncProducer(t, cfg.SaramaConfig())
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewRecordProducerWith(sp, cfg)
	err := p.Append(context.Background(), "run-1", records(1))
	require.Error(t, err)
	assert.ErrorContains(t, err, "send records")
	require.NoError(t, p.Close())
}

func TestRecordProducer_Cancelled(t *testing.T) {
	cfg := Config{Brokers: "localhost:9092"}
	sp := mocks.NewSyncProducer(t, cfg.SaramaConfig())
	p := NewRecordProducerWith(sp, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Append(ctx, "run-1", records(1)), context.Canceled)
	require.NoError(t, p.Close())
}

func TestConfig(t *testing.T) {
	c := Config{Brokers: " a:9092, ,b:9092 "}
	c.SetDefaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.BrokerList())
	assert.Equal(t, "baysim.records", c.Topic)
	assert.Equal(t, 500, c.BatchSize)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.True(t, c.SaramaConfig().Producer.Return.Successes)

	assert.Error(t, Config{}.Validate())
	_, err := NewRecordProducer(Config{})
	assert.Error(t, err)
}
