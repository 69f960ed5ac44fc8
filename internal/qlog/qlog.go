// Copyright 2024 The q Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package qlog provides the optional lifecycle tracing used when the
// enable_q_debug build tag is set. With the tag absent, Trace is a no-op
// so the tracing calls scattered through promise/channel code cost
// nothing in a normal build.
package qlog

import "github.com/sirupsen/logrus"

// Event identifies a point in a promise's or channel's lifecycle worth
// tracing: settlement, continuation dispatch, send/receive, close.
type Event int

const (
	_ Event = iota
	EventSettleFulfilled
	EventSettleRejected
	EventDispatch
	EventChannelSend
	EventChannelReceive
	EventChannelFull
	EventChannelClose
	EventUncaughtRejection
)

func (e Event) String() string {
	switch e {
	case EventSettleFulfilled:
		return "settle_fulfilled"
	case EventSettleRejected:
		return "settle_rejected"
	case EventDispatch:
		return "dispatch"
	case EventChannelSend:
		return "channel_send"
	case EventChannelReceive:
		return "channel_receive"
	case EventChannelFull:
		return "channel_full"
	case EventChannelClose:
		return "channel_close"
	case EventUncaughtRejection:
		return "uncaught_rejection"
	default:
		return "unknown"
	}
}

// Logger is the sink Trace writes to outside of the no-op build. It
// defaults to logrus's standard logger.
var Logger = logrus.StandardLogger()
