package kafka

import (
	"github.com/kilianp07/baysim/core/factory"
	"github.com/kilianp07/baysim/core/recordlog"
)

func init() {
	_ = recordlog.RegisterWriter("kafka", func(conf map[string]any) (recordlog.Writer, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRecordProducer(c)
	})
}
