package recompute

import (
	"sync"
	"testing"
	"time"
)

type recordingSaver struct {
	mu    sync.Mutex
	calls map[int64]int
}

func newRecordingSaver() *recordingSaver {
	return &recordingSaver{calls: map[int64]int{}}
}

func (s *recordingSaver) ResaveBountiesForInterest(interestID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[interestID]++
	return nil
}

func (s *recordingSaver) count(interestID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[interestID]
}

func TestWorkerDedupesWithinBatch(t *testing.T) {
	saver := newRecordingSaver()
	w, err := NewWorker(saver, 2, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	w.Enqueue(1)
	w.Enqueue(1)
	w.Enqueue(1)
	w.Enqueue(2)

	w.Start()
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	if got := saver.count(1); got != 1 {
		t.Fatalf("interest 1 resaved %d times, expected 1", got)
	}
	if got := saver.count(2); got != 1 {
		t.Fatalf("interest 2 resaved %d times, expected 1", got)
	}
}

func TestWorkerFlushesOnStop(t *testing.T) {
	saver := newRecordingSaver()
	// long interval so only the stop flush can drain the queue
	w, err := NewWorker(saver, 1, time.Hour)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	w.Start()
	w.Enqueue(7)
	w.Stop()

	if got := saver.count(7); got != 1 {
		t.Fatalf("pending interest must flush on stop, resaved %d times", got)
	}
}
