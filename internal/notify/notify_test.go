package notify

import (
	"context"
	"testing"
)

type stubNotifier struct {
	ok     bool
	calls  int
	titles []string
}

func (s *stubNotifier) Notify(_ context.Context, title, _ string) bool {
	s.calls++
	s.titles = append(s.titles, title)
	return s.ok
}

func TestConsoleAlwaysSucceeds(t *testing.T) {
	if !(Console{}).Notify(context.Background(), "t", "m") {
		t.Error("console notifier should always succeed")
	}
}

func TestNewConsoleMode(t *testing.T) {
	if _, ok := New("console").(Console); !ok {
		t.Error(`New("console") should return the console sink`)
	}
}

func TestMultiFanOut(t *testing.T) {
	a := &stubNotifier{ok: false}
	b := &stubNotifier{ok: true}
	m := Multi{a, b}

	if !m.Notify(context.Background(), "title", "msg") {
		t.Error("multi should succeed when any sink succeeds")
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d,%d, want 1,1", a.calls, b.calls)
	}
}

func TestMultiAllFail(t *testing.T) {
	m := Multi{&stubNotifier{}, &stubNotifier{}}
	if m.Notify(context.Background(), "title", "msg") {
		t.Error("multi should fail when every sink fails")
	}
}
