package pipeline

import (
	"time"

	"photosync/model"
)

// Debounce collapses bursts of file events into batches: a batch is
// emitted once the source tree has been quiet for delay. Cloud mounts tend
// to produce storms of create/rename events, and one sync run per storm is
// enough since every run re-scans from scratch anyway.
func Debounce(inCh <-chan model.FileEvent, delay time.Duration) <-chan []model.FileEvent {
	outCh := make(chan []model.FileEvent, 1)

	go func() {
		defer close(outCh)

		var batch []model.FileEvent
		timer := time.NewTimer(delay)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case event, ok := <-inCh:
				if !ok {
					if len(batch) > 0 {
						outCh <- batch
					}
					return
				}

				batch = append(batch, event)
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(delay)

			case <-timer.C:
				if len(batch) > 0 {
					outCh <- batch
					batch = nil
				}
			}
		}
	}()

	return outCh
}
