package server

import (
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler 一次性延迟任务；已安排的任务不可取消
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// TimerScheduler 每个任务一个独立定时器（time.AfterFunc），到期在自己的协程里执行
type TimerScheduler struct {
	wg      sync.WaitGroup
	pending int64
}

func NewTimerScheduler() *TimerScheduler { return &TimerScheduler{} }

// Schedule 不阻塞，可在持有世界锁时调用
func (s *TimerScheduler) Schedule(delay time.Duration, fn func()) {
	s.wg.Add(1)
	atomic.AddInt64(&s.pending, 1)
	time.AfterFunc(delay, func() {
		defer s.wg.Done()
		defer atomic.AddInt64(&s.pending, -1)
		fn()
	})
}

// Pending 已安排但尚未执行完毕的任务数
func (s *TimerScheduler) Pending() int64 { return atomic.LoadInt64(&s.pending) }

// Wait 阻塞直到所有已安排的任务执行完毕
func (s *TimerScheduler) Wait() { s.wg.Wait() }
