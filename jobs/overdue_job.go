package jobs

import (
	"log"
	"time"

	"vibedine-api/config"
	"vibedine-api/models"
	"vibedine-api/realtime"

	"github.com/robfig/cron/v3"
)

// Notifier is what the watcher needs from the realtime hub
type Notifier interface {
	Emit(room, event string, data interface{})
}

// OverdueWatcher periodically flags active orders that have been in the
// kitchen longer than their estimate, nudging the kitchen display
type OverdueWatcher struct {
	hub      Notifier
	cron     *cron.Cron
	notified map[uint]bool // orders already flagged this run of the process
}

func NewOverdueWatcher(hub Notifier) *OverdueWatcher {
	return &OverdueWatcher{
		hub:      hub,
		cron:     cron.New(),
		notified: make(map[uint]bool),
	}
}

// Start schedules the watcher to run every minute
func (w *OverdueWatcher) Start() error {
	_, err := w.cron.AddFunc("* * * * *", w.check)
	if err != nil {
		return err
	}
	w.cron.Start()
	log.Println("Overdue order watcher started (running every minute)")
	return nil
}

// Stop halts the watcher
func (w *OverdueWatcher) Stop() {
	w.cron.Stop()
}

func (w *OverdueWatcher) check() {
	var orders []models.Order
	config.DB.
		Where("status NOT IN ?", []models.OrderStatus{models.StatusDelivered, models.StatusCancelled}).
		Find(&orders)

	now := time.Now()
	active := map[uint]bool{}
	for _, o := range orders {
		active[o.ID] = true
		estimate := o.EstimatedPrepTime
		if estimate <= 0 {
			estimate = 20
		}
		elapsed := int(now.Sub(o.CreatedAt).Minutes())
		if elapsed <= estimate || w.notified[o.ID] {
			continue
		}
		w.notified[o.ID] = true
		w.hub.Emit(realtime.RoomKitchen, realtime.EventServiceRequest, map[string]interface{}{
			"type":           "overdue",
			"orderId":        o.ID,
			"orderNumber":    o.OrderNumber,
			"tableNumber":    o.TableNumber,
			"elapsedMinutes": elapsed,
			"estimate":       estimate,
		})
	}

	// Forget finished orders so the map does not grow unbounded
	for id := range w.notified {
		if !active[id] {
			delete(w.notified, id)
		}
	}
}
