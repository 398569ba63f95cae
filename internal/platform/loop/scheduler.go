package loop

import (
	"sync"
	"time"
)

// TickerScheduler delivers periodic callbacks through a Poster so they run
// on the loop rather than on the ticker goroutine.
type TickerScheduler struct {
	poster Poster
}

func NewTickerScheduler(poster Poster) *TickerScheduler {
	return &TickerScheduler{poster: poster}
}

// Every starts a ticker. The returned cancel stops it and is safe to call
// more than once. A tick already posted before cancel may still run, so
// callbacks must check that they are still current.
func (s *TickerScheduler) Every(interval time.Duration, fn func()) func() {
	stop := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				s.poster.Post(fn)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}
}
