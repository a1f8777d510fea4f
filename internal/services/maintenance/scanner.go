package maintenance

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/anoixa/photo-share/utils"
)

// Scanner 周期性执行一致性修复
type Scanner struct {
	reconciler *Reconciler
	interval   time.Duration
	timeout    time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewScanner 创建扫描器
func NewScanner(reconciler *Reconciler, interval time.Duration) *Scanner {
	return &Scanner{
		reconciler: reconciler,
		interval:   interval,
		timeout:    5 * time.Minute,
		stopCh:     make(chan struct{}),
	}
}

// Start 启动扫描器
func (s *Scanner) Start() {
	ticker := time.NewTicker(s.interval)
	s.wg.Add(1)
	utils.SafeGo("reconcile-scanner", func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.scan()
			case <-s.stopCh:
				return
			}
		}
	})
	log.Printf("[Scanner] Started with interval %v", s.interval)
}

// Stop 停止扫描器并等待进行中的扫描结束
func (s *Scanner) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Scanner) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	stats, err := s.reconciler.Run(ctx, Options{})
	if err != nil {
		log.Printf("[Scanner] Reconcile failed: %v", err)
		return
	}
	if stats.DeletedRows+stats.DeletedBlobs > 0 || stats.PulledComments > 0 {
		log.Printf("[Scanner] Repaired %d rows, %d blobs, %d comments",
			stats.DeletedRows, stats.DeletedBlobs, stats.PulledComments)
	}
	utils.LogIfDevf("[Scanner] Pass finished with %d errors", len(stats.Errors))
}
