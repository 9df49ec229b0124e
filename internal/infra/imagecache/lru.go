package imagecache

// lruList maintains a doubly-linked list of keys ordered by last access time.
// The head is the most recently used key.
type lruList struct {
	head *lruNode
	tail *lruNode
	keys map[string]*lruNode
}

type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

func newLRUList() *lruList {
	return &lruList{
		keys: make(map[string]*lruNode),
	}
}

// touch moves key to the front, adding it if absent.
//
// This method must be called while holding the cache lock.
func (l *lruList) touch(key string) {
	if _, exists := l.keys[key]; exists {
		l.remove(key)
	}

	node := &lruNode{
		key:  key,
		next: l.head,
	}
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.keys[key] = node
}

// remove unlinks key from the list.
//
// This method must be called while holding the cache lock.
func (l *lruList) remove(key string) {
	node, exists := l.keys[key]
	if !exists {
		return
	}

	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	delete(l.keys, key)
}

// oldest returns the least recently used key.
func (l *lruList) oldest() (string, bool) {
	if l.tail == nil {
		return "", false
	}
	return l.tail.key, true
}

func (l *lruList) reset() {
	l.head = nil
	l.tail = nil
	l.keys = make(map[string]*lruNode)
}
