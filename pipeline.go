package fulcrum

import "sync"

func task[T any](workersCount int, data []T, fn func(data T)) {
	taskRange(workersCount, len(data), func(i int) {
		fn(data[i])
	})
}

// taskRange splits [0, n) in one contiguous chunk per worker.
// fn must only write to state owned by index i.
func taskRange(workersCount, n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workersCount = max(1, min(workersCount, n))

	var wg sync.WaitGroup
	chunkSize := (n + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(workerID*chunkSize, min((workerID+1)*chunkSize, n))
	}
	wg.Wait()
}
