package queue

import (
    "context"
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/require"
)

func TestHandleMessage_AppendsLines(t *testing.T) {
    logPath := filepath.Join(t.TempDir(), "logs", "swaps.log")
    at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

    for _, typ := range []string{SwapCreated, SwapStatusChanged} {
        body, err := json.Marshal(SwapEvent{Type: typ, SwapID: "w1", RequesterID: "alice", ReceiverID: "bob", Status: "pending", OccurredAt: at})
        require.NoError(t, err)
        require.NoError(t, HandleMessage(logPath, body))
    }

    data, err := os.ReadFile(logPath)
    require.NoError(t, err)
    lines := strings.Split(strings.TrimSpace(string(data)), "\n")
    require.Len(t, lines, 2)
    require.Equal(t, "[2024-05-01T12:00:00Z] swap.created | swap_id=w1 | requester_id=alice | receiver_id=bob | status=pending", lines[0])
    require.Contains(t, lines[1], SwapStatusChanged)
}

func TestHandleMessage_RejectsMalformed(t *testing.T) {
    logPath := filepath.Join(t.TempDir(), "swaps.log")
    require.Error(t, HandleMessage(logPath, []byte("{not json")))
    require.Error(t, HandleMessage(logPath, []byte(`{"type":"swap.created"}`)))

    _, err := os.Stat(logPath)
    require.True(t, os.IsNotExist(err), "nothing is written for rejected messages")
}

func TestSleep_StopsOnCancel(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    cancel()
    require.False(t, sleep(ctx, time.Minute))
    require.True(t, sleep(context.Background(), time.Millisecond))
}
