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

package q

// Pair and Triple give multi-valued channel items a positional-args
// shape without variadic generics, which Go does not have. A
// Channel[Pair[A, B]] carries two values per item; PairOf/TripleOf spell
// the positional calling convention at send sites.
type Pair[A, B any] struct {
	First  A
	Second B
}

// PairOf builds a Pair from two positional values.
func PairOf[A, B any](a A, b B) Pair[A, B] {
	return Pair[A, B]{First: a, Second: b}
}

type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// TripleOf builds a Triple from three positional values.
func TripleOf[A, B, C any](a A, b B, c C) Triple[A, B, C] {
	return Triple[A, B, C]{First: a, Second: b, Third: c}
}

// Unit is the empty-item payload: a Channel[Unit] carries bare signals
// with no values attached.
type Unit struct{}
