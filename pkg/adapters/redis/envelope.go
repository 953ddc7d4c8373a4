package redis

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// request is queued on the requests list by Client.
type request struct {
	ID         string `msgpack:"id"`
	Identifier string `msgpack:"identifier"`
	Args       []any  `msgpack:"args"`
	ReplyTo    string `msgpack:"reply_to"`
	Deadline   int64  `msgpack:"deadline,omitempty"` // unix milliseconds
}

func (r request) deadline() (time.Time, bool) {
	if r.Deadline == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(r.Deadline), true
}

// reply is pushed to the request's ReplyTo list by Worker.
type reply struct {
	ID       string `msgpack:"id"`
	Result   []byte `msgpack:"result,omitempty"`
	Error    string `msgpack:"error,omitempty"`
	NotFound bool   `msgpack:"not_found,omitempty"`
}

func encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
