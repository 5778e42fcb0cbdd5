package ui

// panLock is the camera navigator the controller suspends during a drag.
// Nested suspensions are counted.
type panLock struct {
	depth int
}

func (p *panLock) Suspend() { p.depth++ }

func (p *panLock) Resume() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *panLock) Suspended() bool { return p.depth > 0 }

// noticeQueue collects controller notices; the UI shows them one at a time.
type noticeQueue struct {
	items []string
}

func (q *noticeQueue) Notify(msg string) { q.items = append(q.items, msg) }

func (q *noticeQueue) Peek() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	return q.items[0], true
}

func (q *noticeQueue) Pop() {
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
}
