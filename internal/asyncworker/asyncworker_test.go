package asyncworker

import (
	"sync"
	"testing"
	"time"
)

func TestSubmitBeforeStartFails(t *testing.T) {
	w := New(nil)
	_, err := w.Submit(Request{Kind: KindGitStatus, Cwd: "/tmp"})
	if err == nil {
		t.Fatal("expected error submitting to a non-running worker")
	}
}

func TestStartTwiceFails(t *testing.T) {
	w := New(nil)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() { w.Shutdown(); w.Wait() }()
	if err := w.Start(); err == nil {
		t.Fatal("expected error starting an already-running worker")
	}
}

func TestSubmitAssignsMonotonicIDs(t *testing.T) {
	w := New(nil)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() { w.Shutdown(); w.Wait() }()

	id1, err := w.Submit(Request{Kind: KindGitStatus, Cwd: "/nonexistent"})
	if err != nil {
		t.Fatal(err)
	}
	id2, err := w.Submit(Request{Kind: KindGitStatus, Cwd: "/nonexistent"})
	if err != nil {
		t.Fatal(err)
	}
	if id2 <= id1 {
		t.Errorf("expected monotonic IDs, got %d then %d", id1, id2)
	}
}

func TestCompletionCallbackFiresForGitStatusRequest(t *testing.T) {
	var mu sync.Mutex
	var responses []Response

	w := New(func(r Response) {
		mu.Lock()
		responses = append(responses, r)
		mu.Unlock()
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	id, err := w.Submit(Request{Kind: KindGitStatus, Cwd: "/nonexistent-lush-test-dir", Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	w.Shutdown()
	w.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(responses) != 1 {
		t.Fatalf("expected exactly one response, got %d", len(responses))
	}
	if responses[0].ID != id {
		t.Errorf("got response for ID %d, want %d", responses[0].ID, id)
	}
	if responses[0].GitStatus == nil || responses[0].GitStatus.IsRepo {
		t.Errorf("expected a non-repo status for a nonexistent directory, got %+v", responses[0].GitStatus)
	}
}

func TestCustomKindReturnsFeatureNotAvailable(t *testing.T) {
	var mu sync.Mutex
	var got Response
	done := make(chan struct{})

	w := New(func(r Response) {
		mu.Lock()
		got = r
		mu.Unlock()
		close(done)
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() { w.Shutdown(); w.Wait() }()

	if _, err := w.Submit(Request{Kind: KindCustom}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	mu.Lock()
	defer mu.Unlock()
	if got.Err == nil {
		t.Error("expected an error for an unimplemented custom request")
	}
}

func TestQueueFullRejectsWithResourceExhausted(t *testing.T) {
	// Block the consumer on a slow request so the queue can fill up behind it.
	block := make(chan struct{})
	w := New(func(r Response) {
		<-block
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		close(block)
		w.Destroy()
	}()

	// The first submitted request starts dispatch immediately and leaves the
	// queue itself empty, so fill MaxQueueSize behind it.
	if _, err := w.Submit(Request{Kind: KindCustom}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond) // let the consumer pick up request 1

	var lastErr error
	for i := 0; i < MaxQueueSize+1; i++ {
		_, lastErr = w.Submit(Request{Kind: KindCustom})
		if lastErr != nil {
			break
		}
	}
	if lastErr == nil {
		t.Fatal("expected resource_exhausted once the queue fills")
	}
}

func TestDestroyDrainsWithoutCallback(t *testing.T) {
	block := make(chan struct{})
	var callbackCount int
	var mu sync.Mutex

	w := New(func(r Response) {
		mu.Lock()
		callbackCount++
		mu.Unlock()
		<-block
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	// First request occupies the consumer (blocked on `block`); the rest sit
	// queued.
	if _, err := w.Submit(Request{Kind: KindCustom}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	for i := 0; i < 5; i++ {
		if _, err := w.Submit(Request{Kind: KindCustom}); err != nil {
			t.Fatal(err)
		}
	}

	if got := w.PendingCount(); got != 5 {
		t.Errorf("expected 5 queued requests, got %d", got)
	}

	w.Destroy()
	close(block)

	mu.Lock()
	defer mu.Unlock()
	if callbackCount != 1 {
		t.Errorf("expected exactly 1 callback (the in-flight request), got %d", callbackCount)
	}
}

func TestStatsReflectCompletion(t *testing.T) {
	done := make(chan struct{})
	w := New(func(r Response) { close(done) })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() { w.Shutdown(); w.Wait() }()

	if _, err := w.Submit(Request{Kind: KindCustom}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion")
	}

	total, completed, _ := w.Stats()
	if total != 1 || completed != 1 {
		t.Errorf("got total=%d completed=%d", total, completed)
	}
}
