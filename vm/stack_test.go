package vm

import "testing"

func TestStackPushPopOrder(t *testing.T) {
	s := NewStack(4)
	assert(t, s.Push(1) == nil, "push failed")
	assert(t, s.Push(2) == nil, "push failed")
	v, err := s.Pop()
	assert(t, err == nil && v == 2, "expected LIFO pop to return 2, got %d", v)
	assert(t, s.Count() == 1, "expected count 1 after one pop, got %d", s.Count())
}

func TestStackOverflowAndUnderflow(t *testing.T) {
	s := NewStack(1)
	assert(t, s.Push(1) == nil, "first push should fit within limit")
	assert(t, s.Push(2) == errStackOverflow, "expected overflow on exceeding limit")

	s2 := NewStack(4)
	_, err := s2.Pop()
	assert(t, err == errStackUnderflow, "expected underflow popping an empty stack")
}

func TestStackSwap(t *testing.T) {
	s := NewStack(4)
	s.Push(1)
	s.Push(2)
	assert(t, s.Swap() == nil, "swap failed")
	v, _ := s.Pop()
	assert(t, v == 1, "expected top to be 1 after swap, got %d", v)
}

func TestStackRoll(t *testing.T) {
	s := NewStack(8)
	s.Push(1)
	s.Push(2)
	s.Push(3)
	// Roll the top 3 by 1: [1,2,3] -> [3,1,2] (top to bottom view: 3,2,1 becomes 2,1,3)
	assert(t, s.Roll(3, 1) == nil, "roll failed")
	top, _ := s.Peek(0)
	mid, _ := s.Peek(1)
	bot, _ := s.Peek(2)
	assert(t, top == 2 && mid == 1 && bot == 3, "unexpected roll result: top=%d mid=%d bot=%d", top, mid, bot)
}

func TestStackCopyTop(t *testing.T) {
	s := NewStack(8)
	s.Push(10)
	s.Push(20)
	assert(t, s.CopyTop(2) == nil, "copytop failed")
	assert(t, s.Count() == 4, "expected 4 words after duplicating top 2, got %d", s.Count())
	v, _ := s.Peek(0)
	assert(t, v == 20, "expected duplicated top word 20, got %d", v)
}

func TestStackTruncateTo(t *testing.T) {
	s := NewStack(8)
	s.Push(1)
	s.Push(2)
	s.Push(3)
	assert(t, s.TruncateTo(1) == nil, "truncate failed")
	assert(t, s.Count() == 1, "expected count 1 after truncate, got %d", s.Count())
}
