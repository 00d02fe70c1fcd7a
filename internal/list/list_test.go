package list

import "testing"

func TestPushAndOrder(t *testing.T) {
	t.Parallel()

	l := New[int]()
	l.PushBack(1)
	l.PushBack(2)
	l.PushFront(0)

	if l.Len() != 3 {
		t.Fatalf("expected len 3, got %d", l.Len())
	}

	var got []int
	for e := l.Front(); e != nil; e = e.Next() {
		got = append(got, e.Value)
	}

	want := []int{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	l := New[string]()
	a := l.PushBack("a")
	b := l.PushBack("b")
	c := l.PushBack("c")

	if v := l.Remove(b); v != "b" {
		t.Fatalf("expected b, got %s", v)
	}
	if l.Len() != 2 {
		t.Fatalf("expected len 2, got %d", l.Len())
	}
	if a.Next() != c {
		t.Fatalf("expected a.Next() == c after removing b")
	}
	if c.Prev() != a {
		t.Fatalf("expected c.Prev() == a after removing b")
	}
}

func TestPopFrontBack(t *testing.T) {
	t.Parallel()

	l := New[int]()
	if _, ok := l.PopFront(); ok {
		t.Fatalf("expected empty list to report no front element")
	}

	l.PushBack(1)
	l.PushBack(2)
	l.PushBack(3)

	v, ok := l.PopFront()
	if !ok || v != 1 {
		t.Fatalf("expected (1, true), got (%d, %v)", v, ok)
	}

	v, ok = l.PopBack()
	if !ok || v != 3 {
		t.Fatalf("expected (3, true), got (%d, %v)", v, ok)
	}

	if l.Len() != 1 {
		t.Fatalf("expected len 1, got %d", l.Len())
	}
}

func TestInitClears(t *testing.T) {
	t.Parallel()

	l := New[int]()
	l.PushBack(1)
	l.PushBack(2)
	l.Init()

	if l.Len() != 0 {
		t.Fatalf("expected len 0 after Init, got %d", l.Len())
	}
	if l.Front() != nil || l.Back() != nil {
		t.Fatalf("expected nil front/back after Init")
	}
}

func TestZeroValueList(t *testing.T) {
	t.Parallel()

	var l List[int]
	l.PushBack(1)

	if l.Len() != 1 {
		t.Fatalf("expected len 1, got %d", l.Len())
	}
}
