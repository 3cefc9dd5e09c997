package cent

import (
	"fmt"
	"strconv"

	"github.com/segmentio/encoding/json"
	"github.com/tidwall/gjson"
)

// RawReply is a reply exactly as a transport returned it.
type RawReply []byte

type replyEntry struct {
	key        int
	body       json.RawMessage
	hasError   bool
	errMessage string
	errCode    uint32
	method     string
}

// decodeReply splits raw reply into keyed entries. A JSON array is keyed by
// position, an object carrying reply fields or no fields at all is a single
// entry with key 0, any other object is keyed by its own (integer) keys in
// document order.
func decodeReply(raw RawReply) ([]replyEntry, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedReply)
	}
	root := gjson.ParseBytes(raw)

	var entries []replyEntry
	var err error

	switch {
	case root.IsArray():
		i := 0
		root.ForEach(func(_, value gjson.Result) bool {
			var e replyEntry
			e, err = decodeEntry(i, value)
			if err != nil {
				return false
			}
			entries = append(entries, e)
			i++
			return true
		})
	case root.IsObject() && (isSingleReply(root) || isEmptyObject(root)):
		var e replyEntry
		e, err = decodeEntry(0, root)
		if err == nil {
			entries = append(entries, e)
		}
	case root.IsObject():
		root.ForEach(func(key, value gjson.Result) bool {
			k, convErr := strconv.Atoi(key.String())
			if convErr != nil {
				err = fmt.Errorf("%w: non-integer key %q", ErrMalformedReply, key.String())
				return false
			}
			var e replyEntry
			e, err = decodeEntry(k, value)
			if err != nil {
				return false
			}
			entries = append(entries, e)
			return true
		})
	default:
		return nil, fmt.Errorf("%w: unexpected %s", ErrMalformedReply, root.Type)
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func isSingleReply(v gjson.Result) bool {
	for _, field := range []string{"body", "result", "error", "method"} {
		if v.Get(field).Exists() {
			return true
		}
	}
	return false
}

func isEmptyObject(v gjson.Result) bool {
	empty := true
	v.ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	return empty
}

func decodeEntry(key int, v gjson.Result) (replyEntry, error) {
	e := replyEntry{key: key}
	if v.Type == gjson.Null {
		return e, nil
	}
	if !v.IsObject() {
		return e, fmt.Errorf("%w: entry %d is %s", ErrMalformedReply, key, v.Type)
	}

	body := v.Get("body")
	if !body.Exists() {
		body = v.Get("result")
	}
	if body.Exists() && body.Type != gjson.Null {
		e.body = json.RawMessage(body.Raw)
	}

	// Older servers reply with error string, newer ones with {code, message}.
	replyErr := v.Get("error")
	switch {
	case replyErr.Type == gjson.String:
		if replyErr.Str != "" {
			e.hasError = true
			e.errMessage = replyErr.Str
		}
	case replyErr.IsObject():
		e.hasError = true
		e.errMessage = replyErr.Get("message").String()
		e.errCode = uint32(replyErr.Get("code").Uint())
	case replyErr.Exists() && replyErr.Type != gjson.Null && replyErr.Type != gjson.False:
		e.hasError = true
		e.errMessage = replyErr.Raw
	}

	if method := v.Get("method"); method.Type == gjson.String {
		e.method = method.Str
	}
	return e, nil
}
