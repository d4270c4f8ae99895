// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"reflect"
	"sort"
	"sync"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
)

// Make sure functions get run first
var json = func() jsoniter.API {
	neverEmpty := func(pointer unsafe.Pointer) bool { return false }

	// Encoders
	jsoniter.RegisterFieldEncoderFunc(reflect.TypeOf(Update{}).String(), "Players", encodeUpdatePlayers, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(Message{}).String(), encodeMessage, neverEmpty)

	// Decoders
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(Message{}).String(), decodeMessage)

	return jsoniter.Config{
		IndentionStep:                 0,
		MarshalFloatWith6Digits:       true,
		EscapeHTML:                    false,
		SortMapKeys:                   true,
		UseNumber:                     false,
		DisallowUnknownFields:         false,
		TagKey:                        "json",
		OnlyTaggedField:               false,
		ValidateJsonRawMessage:        false,
		ObjectFieldMustBeSimpleString: true,
		CaseSensitive:                 true,
	}.Froze()
}()

func encodeMessage(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	message := (*Message)(ptr)
	stream.WriteVal(message.messageJSON())
}

var sortedStatesPool = sync.Pool{
	New: func() interface{} {
		slice := make([]*IDPlayerState, 0, poolPlayersCap)
		return &slice
	},
}

// Encodes Update.Players as a json object keyed by player id.
func encodeUpdatePlayers(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	players := *(*[]IDPlayerState)(ptr)

	// Slice of pointers for cheap swaps during sorting
	sortedStatesPtr := sortedStatesPool.Get().(*[]*IDPlayerState)
	sortedStates := *sortedStatesPtr

	for i := range players {
		sortedStates = append(sortedStates, &players[i])
	}

	// Deterministic output
	sort.Slice(sortedStates, func(i, j int) bool {
		return sortedStates[i].ID < sortedStates[j].ID
	})

	stream.WriteObjectStart()
	first := true
	for _, s := range sortedStates {
		if first {
			first = false
		} else {
			stream.WriteMore()
		}

		// Flush because territories can be far larger than the stream buffer
		if stream.Error != nil {
			return
		}
		_ = stream.Flush()

		stream.WriteObjectField(s.ID)
		stream.WriteVal(&s.PlayerState)
	}
	stream.WriteObjectEnd()

	// Clear pointers
	for i := range sortedStates {
		sortedStates[i] = nil
	}

	*sortedStatesPtr = sortedStates[:0]
	sortedStatesPool.Put(sortedStatesPtr)
}

// Buffers large enough to hold most inbounds
var decodeMessagePool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 256)
		return &buf
	},
}

func decodeMessage(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	bufPtr := decodeMessagePool.Get().(*[]byte)
	dataBytes := (*bufPtr)[:0]

	var typeName messageType
	var haveType, haveData bool

	iter.ReadObjectCB(func(i *jsoniter.Iterator, field string) bool {
		switch field {
		case "type":
			typeName = messageType(i.ReadString())
			haveType = true
		case "data":
			dataBytes = i.SkipAndAppendBytes(dataBytes)
			haveData = true
		default:
			i.Skip()
		}
		return true
	})

	message := (*Message)(ptr)

	if iter.Error == nil {
		switch {
		case !haveType:
			iter.Error = errors.New("no inbound message type")
		default:
			inboundType, ok := inboundMessageTypes[typeName]
			if !ok {
				message.Data = InvalidInbound{messageType: typeName}
			} else {
				in := reflect.New(inboundType)
				if haveData {
					pool := iter.Pool()
					dataIter := pool.BorrowIterator(dataBytes)
					dataIter.ReadVal(in.Interface())
					if err := dataIter.Error; err != nil {
						iter.Error = err
					}
					pool.ReturnIterator(dataIter)
				}
				message.Data = in.Elem().Interface()
			}
		}
	}

	*bufPtr = dataBytes[:0]
	decodeMessagePool.Put(bufPtr)
}
