package audio

import "sync"

// FrameAssembler slices a continuous stream of samples into fixed-size frames.
// Devices deliver whatever period size they were configured with; the live
// channel wants a steady [FrameSize].
type FrameAssembler struct {
	mu      sync.Mutex
	size    int
	pending []float32
}

func NewFrameAssembler(size int) *FrameAssembler {
	if size <= 0 {
		size = FrameSize
	}
	return &FrameAssembler{size: size, pending: make([]float32, 0, size*2)}
}

// Write appends samples and calls onFrame for every complete frame. Leftover
// samples are kept for the next call.
func (a *FrameAssembler) Write(samples []float32, onFrame func(frame []float32)) {
	a.mu.Lock()
	a.pending = append(a.pending, samples...)
	var frames [][]float32
	for len(a.pending) >= a.size {
		frame := make([]float32, a.size)
		copy(frame, a.pending[:a.size])
		frames = append(frames, frame)
		a.pending = a.pending[a.size:]
	}
	// Compact so the backing array does not grow forever.
	a.pending = append(a.pending[:0:0], a.pending...)
	a.mu.Unlock()

	for _, frame := range frames {
		onFrame(frame)
	}
}

// Reset drops any partial frame.
func (a *FrameAssembler) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = a.pending[:0]
}

// Pending returns the number of buffered samples not yet forming a frame.
func (a *FrameAssembler) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}
