package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishFanOut(t *testing.T) {
	b := NewBroker[int]()
	go b.Start()
	defer b.Stop()

	sub1 := b.Subscribe()
	sub2 := b.Subscribe()

	require.Eventually(t, func() bool {
		return b.SubCount() == 2
	}, time.Second, time.Millisecond)

	b.Publish(42)

	require.Equal(t, 42, <-sub1)
	require.Equal(t, 42, <-sub2)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroker[int]()
	go b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	require.Eventually(t, func() bool {
		return b.SubCount() == 1
	}, time.Second, time.Millisecond)

	b.Unsubscribe(sub)
	require.Eventually(t, func() bool {
		return b.SubCount() == 0
	}, time.Second, time.Millisecond)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroker[int]()
	go b.Start()
	defer b.Stop()

	_ = b.Subscribe() // never read
	require.Eventually(t, func() bool {
		return b.SubCount() == 1
	}, time.Second, time.Millisecond)

	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(i)
	}

	require.Eventually(t, func() bool {
		return b.DropCount() >= 1
	}, time.Second, time.Millisecond)
}
