package engine

import (
	"time"

	"github.com/rs/zerolog/log"
)

// expireLoop is the day-order expirer. It sleeps until the next daily
// cutoff, bulk-cancels every resting good-for-day order, and
// reschedules for the following day. The engine lock is only ever held
// for the cancel itself, never across the wait.
func (e *Engine) expireLoop() error {
	for {
		timer := time.NewTimer(time.Until(e.nextCutoff(time.Now())))
		select {
		case <-e.t.Dying():
			timer.Stop()
			return nil
		case <-timer.C:
			e.expireDayOrders()
		}
	}
}

// nextCutoff is the first cutoff instant strictly after now.
func (e *Engine) nextCutoff(now time.Time) time.Time {
	now = now.In(e.location)
	cutoff := time.Date(now.Year(), now.Month(), now.Day(),
		e.cutoff.Hour, e.cutoff.Minute, 0, 0, e.location)
	if !cutoff.After(now) {
		cutoff = cutoff.AddDate(0, 0, 1)
	}
	return cutoff
}

func (e *Engine) expireDayOrders() {
	e.mu.Lock()
	ids := e.book.dayOrderIDs()
	for _, id := range ids {
		e.book.cancel(id)
	}
	e.mu.Unlock()

	if len(ids) > 0 {
		log.Info().Int("orders", len(ids)).Msg("cancelled good-for-day orders")
	}
}
