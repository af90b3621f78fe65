package effects

// Queue - FIFO эффектов, ожидающих проигрывания. Не потокобезопасна.
type Queue struct {
	items []Effect
}

// Enqueue добавляет эффекты в хвост в переданном порядке.
func (q *Queue) Enqueue(effects ...Effect) {
	q.items = append(q.items, effects...)
}

// Pop снимает голову очереди.
func (q *Queue) Pop() (Effect, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	e := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return e, true
}

func (q *Queue) Peek() (Effect, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

func (q *Queue) Len() int {
	return len(q.items)
}

// Clear выбрасывает все ожидающие эффекты и возвращает их число.
func (q *Queue) Clear() int {
	n := len(q.items)
	q.items = nil
	return n
}

// Snapshot - копия очереди для отладки.
func (q *Queue) Snapshot() []Effect {
	return append([]Effect(nil), q.items...)
}
