package buffer

import "testing"

func TestPoolGetReturnsZeroed(t *testing.T) {
	p := NewPool()

	s := p.Get(8)
	if len(s) != 8 {
		t.Fatalf("len = %d, want 8", len(s))
	}

	for i, v := range s {
		if v != 0 {
			t.Fatalf("s[%d] = %v, want 0", i, v)
		}
	}

	p.Put(s)
}

func TestPoolReuseIsZeroed(t *testing.T) {
	p := NewPool()

	s := p.Get(4)
	s[0] = 42
	s[1] = 43
	p.Put(s)

	s2 := p.Get(4)
	for i, v := range s2 {
		if v != 0 {
			t.Fatalf("reused s[%d] = %v, want 0", i, v)
		}
	}

	p.Put(s2)
}

func TestPoolNegativeLength(t *testing.T) {
	p := NewPool()
	if s := p.Get(-3); len(s) != 0 {
		t.Fatalf("len = %d, want 0", len(s))
	}
}

func TestPoolPutNilSafe(_ *testing.T) {
	p := NewPool()
	p.Put(nil)
}
