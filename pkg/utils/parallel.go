package utils

import "sync"

// ParallelMap 以受控并发度对 input 逐项执行 fn，返回与输入顺序一致的结果切片。
// - concurrency <= 1 或输入只有单个元素时退化为串行，避免无谓的 goroutine 开销
// - fn 必须自行处理错误（在结果类型里带回），ParallelMap 不做失败传播
func ParallelMap[T any, R any](input []T, concurrency int, fn func(T) R) []R {
	n := len(input)
	if n == 0 {
		return []R{}
	}
	if concurrency > n {
		concurrency = n
	}
	if concurrency <= 1 || n == 1 {
		results := make([]R, n)
		for i, item := range input {
			results[i] = fn(item)
		}
		return results
	}

	results := make([]R, n)
	jobs := make(chan int, n)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for w := 0; w < concurrency; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fn(input[i])
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
