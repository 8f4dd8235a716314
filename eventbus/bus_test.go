package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishOrderedBySubscription(t *testing.T) {
	b := New()
	var order []int

	Subscribe(b, func(NetworkError) { order = append(order, 1) })
	Subscribe(b, func(NetworkError) { order = append(order, 2) })
	Subscribe(b, func(NetworkError) { order = append(order, 3) })

	b.Publish(NetworkError{Message: "boom"})
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPublishOnlyReachesMatchingType(t *testing.T) {
	b := New()
	var gotNetwork, gotStatus int

	Subscribe(b, func(NetworkError) { gotNetwork++ })
	Subscribe(b, func(QueryStatus) { gotStatus++ })

	b.Publish(NetworkError{})
	assert.Equal(t, 1, gotNetwork)
	assert.Equal(t, 0, gotStatus)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	var count int

	id := Subscribe(b, func(NetworkError) { count++ })
	b.Publish(NetworkError{})
	require := assert.New(t)
	require.Equal(1, count)

	Unsubscribe(b, NetworkError{}.Type(), id)
	b.Publish(NetworkError{})
	require.Equal(1, count)
}

func TestPublishWithNoSubscribersIsNoop(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() { b.Publish(NetworkError{Message: "unheard"}) })
}

func TestReentrantSubscribeFromHandlerOnDifferentType(t *testing.T) {
	b := New()
	var statusFired bool

	Subscribe(b, func(NetworkError) {
		Subscribe(b, func(QueryStatus) { statusFired = true })
	})

	b.Publish(NetworkError{})
	b.Publish(QueryStatus{})
	assert.True(t, statusFired)
}

func TestReentrantUnsubscribeFromHandlerOnDifferentType(t *testing.T) {
	b := New()
	var statusCount int
	statusID := Subscribe(b, func(QueryStatus) { statusCount++ })

	Subscribe(b, func(NetworkError) {
		Unsubscribe(b, QueryStatus{}.Type(), statusID)
	})

	b.Publish(NetworkError{})
	b.Publish(QueryStatus{})
	assert.Equal(t, 0, statusCount)
}

func TestDefaultReturnsSameInstance(t *testing.T) {
	assert.Same(t, Default(), Default())
}
