package editor

import (
	"strings"
	"sync"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

type commandKey struct {
	word   string
	quoted bool
}

// commandCache is an LRU of command-word classifications keyed by the lower
// cased word and whether it was quoted. Shell-internal command names are
// pinned and never evicted.
type commandCache struct {
	maxSize int
	entries map[commandKey]*cacheNode
	head    *cacheNode
	tail    *cacheNode
	pinned  map[string]bool
	hits    int
	misses  int
	mutex   sync.Mutex
}

type cacheNode struct {
	key    commandKey
	class  clinktypes.WordClass
	prev   *cacheNode
	next   *cacheNode
	pinned bool
}

// CacheStats describes the command-word cache.
type CacheStats struct {
	Size        int
	MaxSize     int
	PinnedCount int
	Hits        int
	Misses      int
}

func newCommandCache(maxSize int, pinned []string) *commandCache {
	if maxSize <= 0 {
		maxSize = 256
	}

	head := &cacheNode{}
	tail := &cacheNode{}
	head.next = tail
	tail.prev = head

	c := &commandCache{
		maxSize: maxSize,
		entries: make(map[commandKey]*cacheNode),
		head:    head,
		tail:    tail,
		pinned:  make(map[string]bool, len(pinned)),
	}
	for _, name := range pinned {
		c.pinned[strings.ToLower(name)] = true
	}
	return c
}

func cacheKey(word string, quoted bool) commandKey {
	return commandKey{word: strings.ToLower(word), quoted: quoted}
}

// get returns the cached class of word and marks it recently used.
func (c *commandCache) get(word string, quoted bool) (clinktypes.WordClass, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	node, ok := c.entries[cacheKey(word, quoted)]
	if !ok {
		c.misses++
		return clinktypes.ClassNone, false
	}
	c.hits++
	if !node.pinned {
		c.moveToHead(node)
	}
	return node.class, true
}

// set stores the class of word, evicting the least recently used unpinned
// entry when full.
func (c *commandCache) set(word string, quoted bool, class clinktypes.WordClass) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := cacheKey(word, quoted)
	if node, ok := c.entries[key]; ok {
		node.class = class
		if !node.pinned {
			c.moveToHead(node)
		}
		return
	}

	node := &cacheNode{key: key, class: class, pinned: c.pinned[key.word]}
	c.entries[key] = node
	c.addToHead(node)

	if len(c.entries) > c.maxSize {
		c.evictLRU()
	}
}

// clear drops every entry. Pinning only guards against eviction within a
// line; a classifier may answer differently on the next one.
func (c *commandCache) clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	clear(c.entries)
	c.head.next = c.tail
	c.tail.prev = c.head
}

func (c *commandCache) stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	pinned := 0
	for _, node := range c.entries {
		if node.pinned {
			pinned++
		}
	}
	return CacheStats{
		Size:        len(c.entries),
		MaxSize:     c.maxSize,
		PinnedCount: pinned,
		Hits:        c.hits,
		Misses:      c.misses,
	}
}

func (c *commandCache) moveToHead(node *cacheNode) {
	c.removeNode(node)
	c.addToHead(node)
}

func (c *commandCache) addToHead(node *cacheNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *commandCache) removeNode(node *cacheNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}

// evictLRU removes the least recently used unpinned entry. When everything is
// pinned the cache may exceed maxSize.
func (c *commandCache) evictLRU() {
	for node := c.tail.prev; node != c.head; node = node.prev {
		if !node.pinned {
			c.removeNode(node)
			delete(c.entries, node.key)
			return
		}
	}
}
