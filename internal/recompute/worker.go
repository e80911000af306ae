package recompute

import (
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/blues/bms/internal/logger"
)

// Saver 重算并保存引用某个意向的所有悬赏
type Saver interface {
	ResaveBountiesForInterest(interestID int64) error
}

// Worker 批量重算悬赏缓存。意向变更不再内联级联保存所有引用方，
// 而是提交到这里：同一个意向在一个批次窗口内只重算一次。
type Worker struct {
	saver    Saver
	pool     *ants.Pool
	interval time.Duration

	mu      sync.Mutex
	pending map[int64]struct{}

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWorker 创建重算 worker。poolSize 控制并发重算协程数。
func NewWorker(saver Saver, poolSize int, interval time.Duration) (*Worker, error) {
	if poolSize <= 0 {
		poolSize = 4
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &Worker{
		saver:    saver,
		pool:     pool,
		interval: interval,
		pending:  map[int64]struct{}{},
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Enqueue 提交一个待重算的意向，批次内自动去重
func (w *Worker) Enqueue(interestID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[interestID] = struct{}{}
}

// Start 启动批次循环
func (w *Worker) Start() {
	go w.loop()
	logger.Info("Recompute worker started")
}

// Stop 停止并等待当前批次结束
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.pool.Release()
	logger.Info("Recompute worker stopped")
}

func (w *Worker) loop() {
	defer close(w.doneCh)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			w.flush()
			return
		case <-ticker.C:
			w.flush()
		}
	}
}

// flush 把积压的意向批量派发到协程池
func (w *Worker) flush() {
	batch := w.drain()
	if len(batch) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, id := range batch {
		interestID := id
		wg.Add(1)
		err := w.pool.Submit(func() {
			defer wg.Done()
			if err := w.saver.ResaveBountiesForInterest(interestID); err != nil {
				logger.Error("Recompute for interest %d failed: %v", interestID, err)
			}
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit recompute task: %v", err)
		}
	}
	wg.Wait()
	logger.Debug("Recompute batch of %d interests finished", len(batch))
}

// Drain 取走并清空积压集合
func (w *Worker) drain() []int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	batch := make([]int64, 0, len(w.pending))
	for id := range w.pending {
		batch = append(batch, id)
	}
	w.pending = map[int64]struct{}{}
	return batch
}
