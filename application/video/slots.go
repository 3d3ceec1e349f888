package video

import "context"

// slotPool hands out staging slot indexes; a trim holds one for its whole run
type slotPool struct {
	size  int
	slots chan int
}

func newSlotPool(size int) *slotPool {
	if size < 1 {
		size = 1
	}
	p := &slotPool{
		size:  size,
		slots: make(chan int, size),
	}
	for i := 0; i < size; i++ {
		p.slots <- i
	}
	return p
}

// acquire blocks until a slot is free or ctx is done
func (p *slotPool) acquire(ctx context.Context) (int, error) {
	select {
	case i := <-p.slots:
		return i, nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

func (p *slotPool) release(i int) {
	p.slots <- i
}
