package toast

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

func TestQueue_DrainDeliversOnce(t *testing.T) {
	q := NewQueue()
	ctx := context.Background()

	q.Notify(ctx, model.Notification{ID: "1", Title: "first"})
	q.Notify(ctx, model.Notification{ID: "2", Title: "second"})

	got := q.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	assert.Empty(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	q := NewQueue()
	ctx := context.Background()

	for i := range defaultCapacity + 5 {
		q.Notify(ctx, model.Notification{ID: fmt.Sprint(i)})
	}

	got := q.Drain()
	require.Len(t, got, defaultCapacity)
	assert.Equal(t, "5", got[0].ID)
	assert.Equal(t, fmt.Sprint(defaultCapacity+4), got[len(got)-1].ID)
}
