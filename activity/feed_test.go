package activity_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/neuralcore/activity"
	"github.com/tailored-agentic-units/neuralcore/core/envelope"
)

var t0 = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func textEnv(i int) envelope.Envelope {
	return envelope.Envelope{
		Kind:      envelope.KindThoughtStream,
		Sender:    envelope.SenderCoordinator,
		Content:   envelope.TextContent(fmt.Sprintf("msg %d", i)),
		Timestamp: t0.Add(time.Duration(i) * time.Second),
	}
}

func TestFeed_KeepsNewestInOrder(t *testing.T) {
	f := activity.NewFeed(3)
	for i := range 5 {
		f.Add(textEnv(i))
	}

	entries := f.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"msg 2", "msg 3", "msg 4"}, []string{entries[0].Summary, entries[1].Summary, entries[2].Summary})
	assert.Equal(t, 3, f.Len())
}

func TestFeed_PartiallyFilled(t *testing.T) {
	f := activity.NewFeed(0)
	f.Add(textEnv(1))

	entries := f.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, envelope.SenderCoordinator, entries[0].Sender)
	assert.True(t, entries[0].At.Equal(t0.Add(time.Second)))
}

func TestFeed_DefaultCapacity(t *testing.T) {
	f := activity.NewFeed(0)
	for i := range activity.DefaultCapacity + 10 {
		f.Add(textEnv(i))
	}
	assert.Equal(t, activity.DefaultCapacity, f.Len())
	assert.Equal(t, "msg 10", f.Entries()[0].Summary)
}

func TestSummarize(t *testing.T) {
	decode := func(frame string) envelope.Content {
		env, err := envelope.Decode([]byte(frame), t0)
		require.NoError(t, err)
		return env.Content
	}

	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"empty", `{}`, ""},
		{"text", `{"content": "Neural   Link\nEstablished."}`, "Neural Link Established."},
		{"number", `{"content": 42}`, "42"},
		{"trigger", `{"content": {"type": "PROXIMITY_ALERT", "reason": "near 100k"}}`, "PROXIMITY_ALERT: near 100k"},
		{"action", `{"content": {"action": {"type": "BUY"}}}`, "action BUY"},
		{"strategy", `{"content": {"thought_process": "wait"}}`, "wait"},
		{"object", `{"content": {"rsi": 70, "macd": 1}}`, "2 fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, activity.Summarize(decode(tt.frame)))
		})
	}
}

func TestSummarize_Truncates(t *testing.T) {
	s := activity.Summarize(envelope.TextContent(strings.Repeat("é", 500)))
	assert.Equal(t, 120, len([]rune(s)))
	assert.True(t, strings.HasSuffix(s, "…"))
}
