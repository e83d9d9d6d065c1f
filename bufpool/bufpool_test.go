package bufpool

import "testing"

func TestPoolReuse(t *testing.T) {
	p := New(2, 64)
	a := p.Get()
	if len(a) != 64 {
		t.Fatalf("expected chunk len 64, got %d", len(a))
	}
	p.Put(a)
	b := p.Get()
	if len(b) != 64 {
		t.Fatalf("expected reused chunk len 64, got %d", len(b))
	}
}

func TestPoolAllocatesBeyondCapacity(t *testing.T) {
	p := New(0, 32)
	b := p.Get()
	if len(b) != 32 {
		t.Fatalf("expected fallback chunk len 32, got %d", len(b))
	}
	// Returning more than capacity must not panic or block.
	p.Put(b)
	p.Put(make([]byte, 32))
}
