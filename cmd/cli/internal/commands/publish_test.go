package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEvents(t *testing.T) {
	t.Run("yaml list", func(t *testing.T) {
		path := writeFile(t, "events.yaml", `
- eventType: create.organization
  name: Acme
  description: Anvils
- eventType: create.user
  orgId: org-1
  name: Bob
  email: bob@x.com
`)
		events, err := loadEvents(path)
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, "Acme", events[0]["name"])
		require.Equal(t, "bob@x.com", events[1]["email"])
	})

	t.Run("single json object", func(t *testing.T) {
		path := writeFile(t, "event.json", `{"eventType":"update.organization","orgId":"org-1","description":"Rockets"}`)
		events, err := loadEvents(path)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, "update.organization", events[0]["eventType"])
	})

	t.Run("missing event type", func(t *testing.T) {
		path := writeFile(t, "events.json", `[{"eventType":"create.user"},{"name":"Acme"}]`)
		_, err := loadEvents(path)
		require.EqualError(t, err, "event 1: eventType is required")
	})

	t.Run("invalid file", func(t *testing.T) {
		path := writeFile(t, "events.json", `{"eventType":`)
		_, err := loadEvents(path)
		require.Error(t, err)
	})
}

type fakeSender struct {
	batches [][]types.SendMessageBatchRequestEntry
	failID  string
}

func (f *fakeSender) SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
	f.batches = append(f.batches, params.Entries)

	out := &sqs.SendMessageBatchOutput{}
	for _, e := range params.Entries {
		if aws.ToString(e.Id) == f.failID {
			out.Failed = append(out.Failed, types.BatchResultErrorEntry{Id: e.Id, Message: aws.String("too large")})
			continue
		}
		out.Successful = append(out.Successful, types.SendMessageBatchResultEntry{Id: e.Id})
	}
	return out, nil
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	events := make([]map[string]any, 23)
	for i := range events {
		events[i] = map[string]any{"eventType": "create.organization", "name": fmt.Sprintf("org-%d", i), "description": "d"}
	}

	t.Run("batches of ten", func(t *testing.T) {
		sender := &fakeSender{}
		sent, err := publish(ctx, sender, "queue", events)
		require.NoError(t, err)
		require.Equal(t, 23, sent)
		require.Len(t, sender.batches, 3)
		require.Len(t, sender.batches[2], 3)

		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(sender.batches[1][0].MessageBody)), &body))
		require.Equal(t, "org-10", body["name"])
	})

	t.Run("stops on failed entry", func(t *testing.T) {
		sender := &fakeSender{failID: "12"}
		sent, err := publish(ctx, sender, "queue", events)
		require.EqualError(t, err, "failed to send event 12: too large")
		require.Equal(t, 19, sent)
		require.Len(t, sender.batches, 2)
	})
}
