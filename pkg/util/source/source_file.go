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
package source

import (
	"fmt"
	"os"
	"strings"
)

// ReadFile reads a given source file from disk, or produces an error.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	return NewSourceFile(filename, bytes), nil
}

// Line provides information about a given line within the original text.  This
// includes the line number (counting from 1) and the span of the line.
type Line struct {
	text   []rune
	span   Span
	number int
}

// String returns the text of this line, excluding any line terminator.
func (p *Line) String() string {
	return strings.TrimSuffix(string(p.text[p.span.start:p.span.end]), "\r")
}

// Number gets the line number of this line, where the first line has number 1.
func (p *Line) Number() int {
	return p.number
}

// Span returns the span of this line within the original text.
func (p *Line) Span() Span {
	return p.span
}

// File represents a given source file, either read from disk or constructed
// from a string.
type File struct {
	filename string
	contents []rune
}

// NewSourceFile constructs a new source file from a given byte array.
func NewSourceFile(filename string, bytes []byte) *File {
	return &File{filename, []rune(string(bytes))}
}

// Filename returns the filename associated with this source file.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the contents of this source file.
func (s *File) Contents() []rune {
	return s.contents
}

// Text returns the text covered by a given span of this file.
func (s *File) Text(span Span) string {
	return string(s.contents[span.start:span.end])
}

// Lines splits this file into its physical lines.  A trailing line terminator
// does not give rise to an additional empty line.
func (s *File) Lines() []Line {
	var (
		lines []Line
		start = 0
	)
	//
	for i, c := range s.contents {
		if c == '\n' {
			lines = append(lines, Line{s.contents, Span{start, i}, len(lines) + 1})
			start = i + 1
		}
	}
	//
	if start < len(s.contents) {
		lines = append(lines, Line{s.contents, Span{start, len(s.contents)}, len(lines) + 1})
	}
	//
	return lines
}

// SyntaxError constructs a syntax error over a given span of this file with a
// given message.
func (s *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}

// FindFirstEnclosingLine determines the first line in this source file which
// encloses the start of a span.  If the position is beyond the bounds of the
// source file then the last physical line is returned.
func (s *File) FindFirstEnclosingLine(span Span) Line {
	lines := s.Lines()
	//
	for _, l := range lines {
		if span.start <= l.span.end {
			return l
		}
	}
	//
	if len(lines) == 0 {
		return Line{s.contents, Span{0, 0}, 1}
	}
	//
	return lines[len(lines)-1]
}

// SyntaxError is a structured error which retains the span of the original
// text where an error arose, along with an error message.
type SyntaxError struct {
	srcfile *File
	span    Span
	msg     string
}

// SourceFile returns the underlying source file that this syntax error covers.
func (p *SyntaxError) SourceFile() *File {
	return p.srcfile
}

// Span returns the span of the original text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d:%s", p.span.Start(), p.span.End(), p.Message())
}

// FirstEnclosingLine determines the first line in this source file to which
// this error is associated.
func (p *SyntaxError) FirstEnclosingLine() Line {
	return p.srcfile.FindFirstEnclosingLine(p.span)
}
