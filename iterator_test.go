package imagevideo

import (
	"errors"
	"slices"
	"strconv"
	"testing"
)

func TestFrameWriteIteratorOrder(t *testing.T) {
	tests := []struct {
		total, step int
		expected    []int
	}{
		{total: 5, step: 1, expected: []int{0, 1, 2, 3, 4}},
		{total: 10, step: 3, expected: []int{0, 3, 6, 9}},
		{total: 1, step: 4, expected: []int{0}},
	}

	for _, tt := range tests {
		t.Run("step_"+strconv.Itoa(tt.step), func(t *testing.T) {
			plan := WindowPlan{Total: tt.total, Step: tt.step, Window: 100}
			dst := &memSink{}
			iterator := NewFrameWriteIterator(dst, plan, 2)

			var visited []int
			for iterator.Next() {
				visited = append(visited, iterator.Index())
				frame := NewOutputFrame(1, 1, 1)
				frame.Pix[0] = uint8(iterator.Index())
				iterator.SetFrame(frame)
			}
			iterator.Done()

			if err := iterator.Error(); err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(visited, tt.expected) {
				t.Errorf("visited %v, want %v", visited, tt.expected)
			}
			var written []int
			for _, f := range dst.frames {
				written = append(written, int(f.Pix[0]))
			}
			if !slices.Equal(written, tt.expected) {
				t.Errorf("wrote %v, want %v", written, tt.expected)
			}
			if iterator.Written() != len(tt.expected) {
				t.Errorf("Written = %d, want %d", iterator.Written(), len(tt.expected))
			}
		})
	}
}

func TestFrameWriteIteratorNoStep(t *testing.T) {
	dst := &memSink{}
	iterator := NewFrameWriteIterator(dst, WindowPlan{Total: 5}, 1)
	if iterator.Next() {
		t.Error("Next advanced a plan without a step")
	}
	iterator.Done()
	if iterator.Written() != 0 || len(dst.frames) != 0 {
		t.Errorf("wrote %d frames", len(dst.frames))
	}
}

func TestFrameWriteIteratorError(t *testing.T) {
	plan := WindowPlan{Total: 50, Step: 1, Window: 100}
	dst := &memSink{failAt: 1}
	iterator := NewFrameWriteIterator(dst, plan, 1)
	for iterator.Next() {
		iterator.SetFrame(NewOutputFrame(1, 1, 1))
	}
	iterator.Done()

	err := iterator.Error()
	var writeErr *FrameWriteError
	if !errors.As(err, &writeErr) || writeErr.Index != 1 {
		t.Fatalf("expected write error at frame 1, got %v", err)
	}
	if writeErr.Error() != "failed to write frame 1: disk full" {
		t.Errorf("message = %q", writeErr.Error())
	}
	if iterator.Written() != 1 || len(dst.frames) != 1 {
		t.Errorf("Written = %d, sink has %d", iterator.Written(), len(dst.frames))
	}
}
