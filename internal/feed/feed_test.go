package feed_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minerdrop/minerdrop/internal/feed"
	"github.com/minerdrop/minerdrop/internal/storage/inmemory"
)

type recordingNotifier struct {
	sent map[string][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(map[string][]string)}
}

func (n *recordingNotifier) Notify(userID, text string) error {
	n.sent[userID] = append(n.sent[userID], text)
	return nil
}

func (n *recordingNotifier) NotifyOperator(string) error {
	return nil
}

func TestPublishNext(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStorage()
	notifier := newRecordingNotifier()

	require.NoError(t, store.AddSubscriber(ctx, "1"))
	require.NoError(t, store.AddSubscriber(ctx, "2"))

	daemon := feed.NewDaemon(store, feed.WithNotifier(notifier))

	require.NoError(t, daemon.PublishNext(ctx))
	require.NoError(t, daemon.PublishNext(ctx))

	f, err := daemon.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, f.Messages, 2)
	require.NotEqual(t, f.Messages[0], f.Messages[1])

	// Every subscriber got every published message, in order.
	require.Equal(t, f.Messages, notifier.sent["1"])
	require.Equal(t, f.Messages, notifier.sent["2"])
}

func TestPublishNextExhausted(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStorage()
	notifier := newRecordingNotifier()

	require.NoError(t, store.AddSubscriber(ctx, "1"))

	f, err := store.GetFeed(ctx)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		f.Messages = append(f.Messages, fmt.Sprintf("message %d", i))
	}

	require.NoError(t, store.SaveFeed(ctx, f))

	daemon := feed.NewDaemon(store, feed.WithNotifier(notifier))

	// The season list is spent, so publishing becomes a no-op.
	require.NoError(t, daemon.PublishNext(ctx))

	got, err := daemon.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, got.Messages, 20)
	require.Empty(t, notifier.sent)
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStorage()
	notifier := newRecordingNotifier()

	require.NoError(t, store.AddSubscriber(ctx, "1"))

	daemon := feed.NewDaemon(store, feed.WithNotifier(notifier))

	require.NoError(t, daemon.Broadcast(ctx, "maintenance tonight"))

	f, err := daemon.Feed(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"maintenance tonight"}, f.Messages)
	require.Equal(t, []string{"maintenance tonight"}, notifier.sent["1"])
}

func TestBroadcastWithoutNotifier(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStorage()

	daemon := feed.NewDaemon(store)

	require.NoError(t, daemon.Broadcast(ctx, "hello"))

	f, err := daemon.Feed(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"hello"}, f.Messages)
}
