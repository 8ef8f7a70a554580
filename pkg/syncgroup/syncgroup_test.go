package syncgroup

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunAndWait(t *testing.T) {
	g := NewSyncGroup()
	var n atomic.Int32
	release := make(chan struct{})

	for i := 0; i < 3; i++ {
		g.Add(func() {
			<-release
			n.Add(1)
		})
	}
	g.Add(nil)
	assert.Equal(t, 0, g.runningCount())

	g.Run()
	assert.Equal(t, 3, g.runningCount())

	g.Go(func() { n.Add(1) })
	close(release)
	g.Wait()

	assert.Equal(t, int32(4), n.Load())
	assert.Equal(t, 0, g.runningCount())
}
