package vm

import (
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("axon.vm")

var warned sync.Map

// warnOnce emits the message the first time each key is seen in this process
// and suppresses every repeat.
func warnOnce(key, message string) {
	if _, loaded := warned.LoadOrStore(key, struct{}{}); !loaded {
		log.Warning(message)
	}
}
