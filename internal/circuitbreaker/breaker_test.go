package circuitbreaker

import (
	"sync"
	"testing"
	"time"
)

func TestBreaker_StartsClosed(t *testing.T) {
	b := New(3, time.Minute)
	if !b.Allow("anthropic") {
		t.Error("unknown key should be allowed")
	}
	if got := b.State("anthropic"); got != StateClosed {
		t.Errorf("want closed, got %v", got)
	}
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	b := New(3, time.Minute)

	b.RecordFailure("anthropic")
	b.RecordFailure("anthropic")
	if b.State("anthropic") != StateClosed {
		t.Fatal("below threshold should stay closed")
	}

	b.RecordFailure("anthropic")
	if b.State("anthropic") != StateOpen {
		t.Fatal("threshold failure should open the circuit")
	}
	if b.Allow("anthropic") {
		t.Error("open circuit must reject requests")
	}
}

func TestBreaker_SuccessResetsStreak(t *testing.T) {
	b := New(3, time.Minute)

	b.RecordFailure("anthropic")
	b.RecordFailure("anthropic")
	b.RecordSuccess("anthropic")
	b.RecordFailure("anthropic")
	b.RecordFailure("anthropic")

	if b.State("anthropic") != StateClosed {
		t.Error("non-consecutive failures should not trip the breaker")
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b := New(1, 10*time.Millisecond)

	b.RecordFailure("anthropic")
	if b.Allow("anthropic") {
		t.Fatal("circuit should be open")
	}

	time.Sleep(15 * time.Millisecond)

	if !b.Allow("anthropic") {
		t.Fatal("expired open period should admit a probe")
	}
	if b.State("anthropic") != StateHalfOpen {
		t.Fatalf("want half_open, got %v", b.State("anthropic"))
	}
	if b.Allow("anthropic") {
		t.Error("only one probe may be in flight")
	}
}

func TestBreaker_ProbeSuccessCloses(t *testing.T) {
	b := New(1, 10*time.Millisecond)

	b.RecordFailure("anthropic")
	time.Sleep(15 * time.Millisecond)
	b.Allow("anthropic") // probe admitted
	b.RecordSuccess("anthropic")

	if b.State("anthropic") != StateClosed {
		t.Error("successful probe should close the circuit")
	}
	if !b.Allow("anthropic") {
		t.Error("closed circuit should allow traffic")
	}
}

func TestBreaker_ProbeFailureReopens(t *testing.T) {
	b := New(1, 10*time.Millisecond)

	b.RecordFailure("anthropic")
	time.Sleep(15 * time.Millisecond)
	b.Allow("anthropic") // probe admitted
	b.RecordFailure("anthropic")

	if b.State("anthropic") != StateOpen {
		t.Error("failed probe should reopen the circuit")
	}
	if b.Allow("anthropic") {
		t.Error("reopened circuit must reject until the next window")
	}
}

func TestBreaker_KeysAreIndependent(t *testing.T) {
	b := New(1, time.Minute)

	b.RecordFailure("anthropic")
	if b.Allow("anthropic") {
		t.Error("tripped key should reject")
	}
	if !b.Allow("other") {
		t.Error("other keys must be unaffected")
	}
}

func TestBreaker_TransitionCallback(t *testing.T) {
	b := New(1, time.Minute)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	b.OnTransition(func(key string, from, to State) {
		mu.Lock()
		got = append(got, key+":"+from.String()+">"+to.String())
		mu.Unlock()
		close(done)
	})

	b.RecordFailure("anthropic")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("transition callback never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "anthropic:closed>open" {
		t.Errorf("unexpected transitions: %v", got)
	}
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half_open",
		State(42):     "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
