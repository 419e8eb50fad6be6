package queue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/baysim/core/model"
)

func req(seq int) model.Request {
	return model.Request{Class: model.ClassCar, Duration: 1, Seq: seq}
}

func TestFIFOOrder(t *testing.T) {
	q := New()
	for i := 0; i < 5; i++ {
		_, dropped := q.Push(req(i))
		require.False(t, dropped)
	}
	assert.Equal(t, 5, q.Len())
	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 0, head.Seq)
	for i := 0; i < 5; i++ {
		r, err := q.Pop()
		require.NoError(t, err)
		assert.Equal(t, i, r.Seq)
	}
	assert.Equal(t, 0, q.Len())
}

func TestPopEmpty(t *testing.T) {
	q := New()
	_, err := q.Pop()
	assert.True(t, errors.Is(err, model.ErrInvariantViolation))
	_, ok := q.Peek()
	assert.False(t, ok)
}

func TestUnboundedNeverDrops(t *testing.T) {
	q := New()
	for i := 0; i < 10000; i++ {
		q.Push(req(i))
	}
	assert.Equal(t, 10000, q.Len())
	assert.Equal(t, 0, q.Dropped())
}

func TestBoundedDropNewest(t *testing.T) {
	q, err := NewBounded(2, DropNewest)
	require.NoError(t, err)
	q.Push(req(1))
	q.Push(req(2))
	d, dropped := q.Push(req(3))
	require.True(t, dropped)
	assert.Equal(t, 3, d.Seq)
	assert.Equal(t, []model.Request{req(1), req(2)}, q.Items())
	assert.Equal(t, 1, q.Dropped())
}

func TestBoundedDropOldest(t *testing.T) {
	q, err := NewBounded(2, DropOldest)
	require.NoError(t, err)
	q.Push(req(1))
	q.Push(req(2))
	d, dropped := q.Push(req(3))
	require.True(t, dropped)
	assert.Equal(t, 1, d.Seq)
	assert.Equal(t, []model.Request{req(2), req(3)}, q.Items())
}

func TestNewBoundedValidation(t *testing.T) {
	_, err := NewBounded(-1, DropNewest)
	assert.ErrorIs(t, err, model.ErrConfiguration)
	_, err = NewBounded(1, "drop_random")
	assert.ErrorIs(t, err, model.ErrConfiguration)

	q, err := NewBounded(0, "")
	require.NoError(t, err)
	q.Push(req(1))
	q.Push(req(2))
	assert.Equal(t, 2, q.Len(), "zero capacity is unbounded")
}
