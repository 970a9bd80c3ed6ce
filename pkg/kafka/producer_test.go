package kafka

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWriterConcurrentFirstUse(t *testing.T) {
	producer := NewProducer(&Config{
		Brokers:  []string{"localhost:9092"},
		ClientID: "test",
	})

	const goroutines = 8
	writers := make([]any, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			writers[i] = producer.getWriter(Topics.StockEvents)
		}(i)
	}
	wg.Wait()

	// Every caller sees the same writer and only one entry exists.
	for i := 1; i < goroutines; i++ {
		assert.Same(t, writers[0], writers[i])
	}
	assert.Len(t, producer.writers, 1)
}

func TestGetWriterPerTopic(t *testing.T) {
	producer := NewProducer(&Config{Brokers: []string{"localhost:9092"}})

	stock := producer.getWriter("topic-a")
	other := producer.getWriter("topic-b")
	require.NotSame(t, stock, other)
	assert.Same(t, stock, producer.getWriter("topic-a"))
}
