package sigchan

// Chan 合并型信号 channel：只传递“有事发生”，不传数据。
// 容量为 1 时，未被消费前的多次 Emit 合并为一次。
type Chan struct {
	c chan struct{}
}

// New 创建信号 channel，bufferSize < 1 时按 1 处理
func New(bufferSize int) *Chan {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Chan{
		c: make(chan struct{}, bufferSize),
	}
}

// Emit 发送信号（非阻塞），返回是否入队；满了直接丢弃
func (c *Chan) Emit() bool {
	select {
	case c.c <- struct{}{}:
		return true
	default:
		return false
	}
}

// pending 当前排队的信号数
func (c *Chan) pending() int {
	return len(c.c)
}

// C 返回内部的 channel（用于 select）
func (c *Chan) C() <-chan struct{} {
	return c.c
}
