// Package bufpool pools the copy buffers used while digesting artifact
// files, so concurrent admin uploads do not each allocate their own.
package bufpool

import "sync"

const bufSize = 256 * 1024

var pool = sync.Pool{
	New: func() any {
		b := make([]byte, bufSize)
		return &b
	},
}

func Get() *[]byte {
	return pool.Get().(*[]byte)
}

func Put(b *[]byte) {
	pool.Put(b)
}
