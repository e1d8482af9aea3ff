package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-chatline/internal/config"
	"go-chatline/internal/infrastructure/queue/port"
)

func TestParseQueueWeights(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]int
	}{
		{in: "chat=1,default=1", want: map[string]int{"chat": 1, "default": 1}},
		{in: " critical=6 , low ", want: map[string]int{"critical": 6, "low": 1}},
		{in: "bad=x,=3,,ok=0", want: map[string]int{"bad": 1, "ok": 1}},
		{in: "", want: map[string]int{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseQueueWeights(tt.in), tt.in)
	}
}

func TestToAsynqOptions(t *testing.T) {
	assert.Empty(t, toAsynqOptions(port.EnqueueOption{}))
	opts := toAsynqOptions(port.EnqueueOption{Queue: "chat", MaxRetry: 3, Timeout: time.Second})
	assert.Len(t, opts, 3)
}

func TestRedisOptRequiresURL(t *testing.T) {
	_, err := NewAsynqClient(&config.Config{})
	assert.Error(t, err)
}
