package crawl

// Queue is a FIFO queue that admits each key once. Discovery uses it both
// for BFS crawling and to de-duplicate sources.
type Queue struct {
	items   []string
	visited map[string]bool
	idx     int
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{
		visited: make(map[string]bool),
	}
}

// Add enqueues key unless it was seen before, and reports whether it was
// added.
func (q *Queue) Add(key string) bool {
	if q.visited[key] {
		return false
	}
	q.visited[key] = true
	q.items = append(q.items, key)
	return true
}

// HasNext returns true if there are unprocessed keys.
func (q *Queue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next unprocessed key and advances the pointer.
func (q *Queue) Next() string {
	key := q.items[q.idx]
	q.idx++
	return key
}

// Visited returns the number of keys dequeued so far.
func (q *Queue) Visited() int {
	return q.idx
}
