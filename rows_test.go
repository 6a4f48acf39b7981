package lensfun

import (
	"context"
	"sync"
	"testing"

	"go.viam.com/test"
)

func TestRunRowsVisitsEveryRowExactlyOnce(t *testing.T) {
	const h = 37
	var mu sync.Mutex
	seen := make(map[int]int)
	RunRows(h, 4, func(row int) {
		mu.Lock()
		seen[row]++
		mu.Unlock()
	})
	test.That(t, len(seen), test.ShouldEqual, h)
	for row := 0; row < h; row++ {
		test.That(t, seen[row], test.ShouldEqual, 1)
	}
}

func TestRunRowsSingleWorkerIsSequential(t *testing.T) {
	var order []int
	RunRows(5, 1, func(row int) { order = append(order, row) })
	test.That(t, order, test.ShouldResemble, []int{0, 1, 2, 3, 4})
}

func TestRunRowsClampsWorkersToRowCount(t *testing.T) {
	// Requesting more workers than rows must not panic or deadlock, and
	// every row must still be visited exactly once.
	const h = 3
	var mu sync.Mutex
	seen := make(map[int]bool)
	RunRows(h, 100, func(row int) {
		mu.Lock()
		seen[row] = true
		mu.Unlock()
	})
	test.That(t, len(seen), test.ShouldEqual, h)
}

func TestRunRowsContextReturnsNilWhenUncancelled(t *testing.T) {
	count := 0
	var mu sync.Mutex
	err := RunRowsContext(context.Background(), 10, 4, func(row int) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, count, test.ShouldEqual, 10)
}

func TestRunRowsContextReturnsErrOnAlreadyCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ranAny := false
	err := RunRowsContext(ctx, 10, 1, func(row int) { ranAny = true })
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, ranAny, test.ShouldBeFalse)
}

func TestRunRowsContextStopsEarlyOnCancellationMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	done := 0
	err := RunRowsContext(ctx, 1000, 1, func(row int) {
		mu.Lock()
		done++
		mu.Unlock()
		if row == 5 {
			cancel()
		}
	})
	test.That(t, err, test.ShouldNotBeNil)
	mu.Lock()
	finalDone := done
	mu.Unlock()
	test.That(t, finalDone, test.ShouldBeLessThan, 1000)
}
