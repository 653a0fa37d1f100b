package domain

import (
	"encoding/json"
	"strconv"
)

// CallKind classifies an intercepted operation.
type CallKind string

const (
	CallOpen    CallKind = "open"
	CallClose   CallKind = "close"
	CallIoctl   CallKind = "ioctl"
	CallMmap    CallKind = "mmap"
	CallMunmap  CallKind = "munmap"
	CallUnknown CallKind = "unknown"
)

// callKeys maps the syscall key written by the shim to its kind. Order
// matters only for records carrying more than one key, which the shim never
// writes.
var callKeys = []struct {
	key  string
	kind CallKind
}{
	{"open", CallOpen},
	{"open64", CallOpen},
	{"openat", CallOpen},
	{"openat64", CallOpen},
	{"close", CallClose},
	{"ioctl", CallIoctl},
	{"mmap", CallMmap},
	{"mmap64", CallMmap},
	{"munmap", CallMunmap},
}

// CallRecord is one intercepted operation as written by the shim. The
// payload layout belongs to the shim; only the envelope is interpreted here.
type CallRecord map[string]json.RawMessage

// Kind reports which operation the record describes.
func (r CallRecord) Kind() CallKind {
	for _, ck := range callKeys {
		if _, ok := r[ck.key]; ok {
			return ck.kind
		}
	}
	return CallUnknown
}

// Syscall returns the key the kind was derived from, e.g. "open64".
func (r CallRecord) Syscall() string {
	for _, ck := range callKeys {
		if _, ok := r[ck.key]; ok {
			return ck.key
		}
	}
	return ""
}

// FD returns the descriptor number recorded for the call.
func (r CallRecord) FD() (int, bool) {
	for _, key := range []string{"fd", "fildes"} {
		raw, ok := r[key]
		if !ok {
			continue
		}
		if fd, ok := rawInt(raw); ok {
			return fd, true
		}
	}
	return 0, false
}

// Payload returns the object stored under the syscall key.
func (r CallRecord) Payload() map[string]json.RawMessage {
	raw, ok := r[r.Syscall()]
	if !ok {
		return nil
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload
}

// String returns the string value stored under key, looking first in the
// record and then in its payload.
func (r CallRecord) String(key string) string {
	if s, ok := rawString(r[key]); ok {
		return s
	}
	if s, ok := rawString(r.Payload()[key]); ok {
		return s
	}
	return ""
}

// Int returns the integer value stored under key, looking first in the
// record and then in its payload.
func (r CallRecord) Int(key string) (int, bool) {
	if v, ok := rawInt(r[key]); ok {
		return v, true
	}
	return rawInt(r.Payload()[key])
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// rawInt accepts numbers and numeric strings; the shim writes both.
func rawInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			return int(v), true
		}
	}
	if s, ok := rawString(raw); ok {
		if v, err := strconv.ParseInt(s, 0, 64); err == nil {
			return int(v), true
		}
	}
	return 0, false
}
