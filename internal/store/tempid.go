package store

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// TempIDPrefix marks ids minted locally for tasks whose creation has not
// been confirmed. Server ids are UUIDs and never carry it.
const TempIDPrefix = "temp_"

var tempSeq atomic.Uint64

func newTempID(now time.Time) string {
	return TempIDPrefix + strconv.FormatInt(now.UnixNano(), 10) + "_" + strconv.FormatUint(tempSeq.Add(1), 10)
}

// IsTempID reports whether id belongs to an unconfirmed task.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}
