package app

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utafrali/storefront/pkg/logger"
)

func TestClosers_CloseAllInReverseOrder(t *testing.T) {
	var order []string
	var c closers
	for _, name := range []string{"postgres", "redis", "kafka producer"} {
		c.add(name, func() error {
			order = append(order, name)
			return nil
		})
	}

	c.closeAll(logger.NewWithWriter("test", "error", &bytes.Buffer{}))

	assert.Equal(t, []string{"kafka producer", "redis", "postgres"}, order)
}

func TestClosers_FailureDoesNotStopTheRest(t *testing.T) {
	var buf bytes.Buffer
	closed := false
	var c closers
	c.add("postgres", func() error {
		closed = true
		return nil
	})
	c.add("redis", func() error { return errors.New("connection reset") })

	c.closeAll(logger.NewWithWriter("test", "error", &buf))

	assert.True(t, closed)
	assert.Contains(t, buf.String(), "connection reset")
	assert.Contains(t, buf.String(), `"resource":"redis"`)
}
