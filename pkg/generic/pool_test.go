package generic_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/dataconverter/pkg/generic"
)

func TestPoolResetsOnPut(t *testing.T) {
	created := 0
	pool := generic.NewPool(func() *bytes.Buffer {
		created++
		return new(bytes.Buffer)
	}, (*bytes.Buffer).Reset)

	buf := pool.Get()
	buf.WriteString("dirty")
	pool.Put(buf)

	assert.Zero(t, buf.Len())
	assert.Positive(t, created)
}
