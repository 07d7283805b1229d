// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package template

// Kind identifies one of the supported constraint templates.  The set of
// templates is closed, and every switch over it should be exhaustive.
type Kind uint8

const (
	// Init requires a trace to start with a given activity.
	Init Kind = iota
	// Existence requires at least n occurrences of an activity.
	Existence
	// Absence requires fewer than n occurrences of an activity.
	Absence
	// Exactly requires exactly n occurrences of an activity.
	Exactly
	// End requires a trace to finish with a given activity.
	End
	// Choice requires at least one of two activities to occur.
	Choice
	// ExclusiveChoice requires exactly one of two activities to occur.
	ExclusiveChoice
	// RespondedExistence requires B to occur somewhere if A does.
	RespondedExistence
	// CoExistence requires both, or neither, of A and B to occur.
	CoExistence
	// Response requires every A to be followed by some B.
	Response
	// AlternateResponse is Response without a repeat of A before the B.
	AlternateResponse
	// ChainResponse requires every A to be immediately followed by B.
	ChainResponse
	// Precedence requires every A to be preceded by some B.
	Precedence
	// AlternatePrecedence is Precedence without a repeat of A after the B.
	AlternatePrecedence
	// ChainPrecedence requires every A to be immediately preceded by B.
	ChainPrecedence
	// Succession is Response[A,B] and Precedence[B,A].
	Succession
	// AlternateSuccession is AlternateResponse[A,B] and AlternatePrecedence[B,A].
	AlternateSuccession
	// ChainSuccession is ChainResponse[A,B] and ChainPrecedence[B,A].
	ChainSuccession
	// NotRespondedExistence forbids B anywhere if A occurs.
	NotRespondedExistence
	// NotResponse forbids B after any A.
	NotResponse
	// NotPrecedence forbids B before any A.
	NotPrecedence
	// NotChainResponse forbids B immediately after any A.
	NotChainResponse
	// NotChainPrecedence forbids B immediately before any A.
	NotChainPrecedence
)

var names = [...]string{
	"Init", "Existence", "Absence", "Exactly", "End",
	"Choice", "ExclusiveChoice", "RespondedExistence", "CoExistence",
	"Response", "AlternateResponse", "ChainResponse",
	"Precedence", "AlternatePrecedence", "ChainPrecedence",
	"Succession", "AlternateSuccession", "ChainSuccession",
	"NotRespondedExistence", "NotResponse", "NotPrecedence", "NotChainResponse", "NotChainPrecedence",
}

// All returns every template, in declaration order.
func All() []Kind {
	kinds := make([]Kind, len(names))
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	//
	return kinds
}

// Names returns the names of every template, in declaration order.
func Names() []string {
	return names[:]
}

// Parse a template name, which must match exactly.
func Parse(name string) (Kind, bool) {
	for i, n := range names {
		if n == name {
			return Kind(i), true
		}
	}
	//
	return 0, false
}

func (k Kind) String() string {
	return names[k]
}

// IsBinary determines whether this template relates two activities.
func (k Kind) IsBinary() bool {
	return k >= Choice
}

// HasCount determines whether this template takes an occurrence count as its
// second argument.
func (k Kind) HasCount() bool {
	return k == Existence || k == Absence || k == Exactly
}

// IsNegative determines whether this template belongs to the negative family.
// Their correlation conditions are compiled in negated form.
func (k Kind) IsNegative() bool {
	return k >= NotRespondedExistence
}

// SupportsVacuity determines whether a constraint over this template can be
// satisfied vacuously, because its activation never occurs.
func (k Kind) SupportsVacuity() bool {
	return k >= RespondedExistence
}

// Constituents returns the templates a composite template is the conjunction
// of, with the second applied to the swapped arguments.  Returns false for any
// other template.
func (k Kind) Constituents() (Kind, Kind, bool) {
	switch k {
	case Succession:
		return Response, Precedence, true
	case AlternateSuccession:
		return AlternateResponse, AlternatePrecedence, true
	case ChainSuccession:
		return ChainResponse, ChainPrecedence, true
	case CoExistence:
		return RespondedExistence, RespondedExistence, true
	default:
		return 0, 0, false
	}
}
