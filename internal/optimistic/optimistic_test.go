package optimistic

import (
	"errors"
	"testing"
)

func TestApplyKeepsValueOnSuccess(t *testing.T) {
	m := NewMap[string, string]()
	m.Replace(map[string]string{"r1": "pending"})

	err := m.Apply("r1", "accepted", func() error {
		if v, _ := m.Get("r1"); v != "accepted" {
			t.Errorf("value during commit = %q, want the speculative one", v)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Get("r1"); v != "accepted" {
		t.Errorf("value = %q", v)
	}
}

func TestApplyRollsBackOnFailure(t *testing.T) {
	boom := errors.New("boom")

	for _, prior := range []string{"pending", "open"} {
		m := NewMap[string, string]()
		m.Replace(map[string]string{"r1": prior})

		err := m.Apply("r1", "accepted", func() error { return boom })
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
		if v, _ := m.Get("r1"); v != prior {
			t.Errorf("value after rollback = %q, want %q", v, prior)
		}
	}
}

func TestApplyRollbackRemovesNewKeys(t *testing.T) {
	m := NewMap[string, string]()
	_ = m.Apply("r9", "accepted", func() error { return errors.New("x") })
	if _, ok := m.Get("r9"); ok {
		t.Error("key created by a failed Apply should be removed")
	}
}

func TestApplyDoesNotClobberNewerWrites(t *testing.T) {
	m := NewMap[string, string]()
	m.Replace(map[string]string{"r1": "pending"})

	_ = m.Apply("r1", "accepted", func() error {
		// A re-fetch lands while the commit is in flight.
		m.Replace(map[string]string{"r1": "rejected"})
		return errors.New("x")
	})
	if v, _ := m.Get("r1"); v != "rejected" {
		t.Errorf("value = %q, rollback overwrote a newer write", v)
	}
}
