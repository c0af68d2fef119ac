package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rmja/linkiq/stack"
)

func TestChannelIndexAndString(t *testing.T) {
	cases := []struct {
		ch    stack.Channel
		index int
		name  string
	}{
		{stack.ChannelA, 0, "A"},
		{stack.ChannelB, 1, "B"},
		{stack.ChannelC, 2, "C"},
		{stack.ChannelD, 3, "D"},
	}
	for _, c := range cases {
		assert.Equal(t, c.index, c.ch.Index())
		assert.Equal(t, c.name, c.ch.String())
	}
}
