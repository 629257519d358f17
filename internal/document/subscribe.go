package document

import (
	"github.com/google/uuid"

	"github.com/morozRed/jsnav/internal/logging"
)

// Subscribe registers fn to receive an Event after every handled change.
// It returns the id to pass to Unsubscribe.
func (d *Document) Subscribe(fn func(Event)) string {
	id := uuid.New().String()
	d.subMu.Lock()
	d.subs[id] = fn
	d.subMu.Unlock()
	return id
}

// Unsubscribe removes a subscription. It reports whether id was registered.
func (d *Document) Unsubscribe(id string) bool {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	if _, ok := d.subs[id]; !ok {
		return false
	}
	delete(d.subs, id)
	return true
}

// notify calls subscribers outside the lock so they may query or
// unsubscribe from inside the callback.
func (d *Document) notify(ev Event) {
	d.subMu.RLock()
	fns := make(map[string]func(Event), len(d.subs))
	for id, fn := range d.subs {
		fns[id] = fn
	}
	d.subMu.RUnlock()

	for id, fn := range fns {
		d.logger.Debug("notifying subscriber",
			logging.FieldSubscriber, id,
			logging.FieldVersion, ev.Version,
		)
		fn(ev)
	}
}
