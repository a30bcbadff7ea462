package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	assert.Equal(t, 11.0, Apply(10, 10))
	assert.Equal(t, 10.0, Apply(10, 0))
	assert.Equal(t, 9.0, Apply(10, -10))
	assert.InDelta(t, 13.75, Apply(12.5, 10), 1e-9)
}
