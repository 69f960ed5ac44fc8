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

//go:build enable_q_debug

package qlog

// Trace logs ev with the given fields through Logger. Fields are
// key-value pairs, passed flat (k1, v1, k2, v2, ...) to keep call sites
// terse; an odd-length list drops its trailing key.
func Trace(ev Event, fields ...interface{}) {
	entry := Logger.WithField("event", ev.String())
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		entry = entry.WithField(key, fields[i+1])
	}
	entry.Debug("q: trace")
}
