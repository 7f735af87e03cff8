/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rolz

import (
	"fmt"
	"time"
)

const (
	EVT_COMPRESSION_START   = 0 // Compression starts
	EVT_COMPRESSION_END     = 1 // Compression ends
	EVT_DECOMPRESSION_START = 2 // Decompression starts
	EVT_DECOMPRESSION_END   = 3 // Decompression ends
	EVT_BLOCK_INFO          = 4 // One block has been fully encoded or decoded
	EVT_VERSION_MISMATCH    = 5 // Stream version tag does not match this build (non-fatal)
)

// Event reports one step of an Encode or Decode run. The core never logs
// on its own; it only calls the Listeners passed to it.
type Event struct {
	eventType int
	blockID   int
	size      int64
	eventTime time.Time
	msg       string
}

// NewEventFromString creates an Event that wraps a diagnostic message,
// used for events with no associated byte count (EVT_VERSION_MISMATCH,
// EVT_COMPRESSION_START/END, ...).
func NewEventFromString(evtType, blockID int, msg string, evtTime time.Time) *Event {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return &Event{eventType: evtType, blockID: blockID, msg: msg, eventTime: evtTime}
}

// NewEvent creates an Event carrying the number of bytes the block it
// reports on contributed to the source (uncompressed) stream.
func NewEvent(evtType, blockID int, size int64, evtTime time.Time) *Event {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return &Event{eventType: evtType, blockID: blockID, size: size, eventTime: evtTime}
}

// Type returns the event kind, one of the EVT_ constants.
func (this *Event) Type() int {
	return this.eventType
}

// BlockID returns the 0-based index of the block this event reports on,
// or -1 for events that are not scoped to a single block.
func (this *Event) BlockID() int {
	return this.blockID
}

// Time returns when the event was created.
func (this *Event) Time() time.Time {
	return this.eventTime
}

// Size returns the byte count associated with the event, if any.
func (this *Event) Size() int64 {
	return this.size
}

// String returns a string representation of this event. If the event
// wraps a message, the message is returned; otherwise a string is built
// from the fields.
func (this *Event) String() string {
	if len(this.msg) > 0 {
		return this.msg
	}

	t := ""

	switch this.eventType {
	case EVT_COMPRESSION_START:
		t = "COMPRESSION_START"
	case EVT_COMPRESSION_END:
		t = "COMPRESSION_END"
	case EVT_DECOMPRESSION_START:
		t = "DECOMPRESSION_START"
	case EVT_DECOMPRESSION_END:
		t = "DECOMPRESSION_END"
	case EVT_BLOCK_INFO:
		t = "BLOCK_INFO"
	case EVT_VERSION_MISMATCH:
		t = "VERSION_MISMATCH"
	}

	return fmt.Sprintf("{ \"type\":\"%s\", \"blockID\":%d, \"size\":%d, \"time\":%d }",
		t, this.blockID, this.size, this.eventTime.UnixNano()/1000000)
}

// Listener is implemented by anything that wants to observe Encode/Decode
// progress.
type Listener interface {
	// ProcessEvent is called whenever a Listener receives an event.
	ProcessEvent(evt *Event)
}

func notifyListeners(listeners []Listener, evt *Event) {
	for _, l := range listeners {
		if l != nil {
			l.ProcessEvent(evt)
		}
	}
}
