// Copyright 2025 The rcond Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package streambuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadInt32LE(t *testing.T) {
	buf := New()
	buf.Write([]byte{0x0A, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF})

	v, ok := buf.ReadInt32LE()
	assert.True(t, ok)
	assert.Equal(t, int32(10), v)

	v, ok = buf.ReadInt32LE()
	assert.True(t, ok)
	assert.Equal(t, int32(-1), v)

	_, ok = buf.ReadInt32LE()
	assert.False(t, ok)
	assert.Equal(t, 0, buf.Len())
}

func TestMarkReset(t *testing.T) {
	buf := New()
	buf.Write([]byte{0x01, 0x00, 0x00, 0x00, 0x02})

	buf.Mark()
	_, ok := buf.ReadInt32LE()
	assert.True(t, ok)
	assert.Equal(t, 1, buf.Len())

	buf.Reset()
	assert.Equal(t, 5, buf.Len())

	v, ok := buf.ReadInt32LE()
	assert.True(t, ok)
	assert.Equal(t, int32(1), v)
}

func TestIndexByteN(t *testing.T) {
	buf := New()
	buf.Write([]byte("hello\x00world"))

	assert.Equal(t, 5, buf.IndexByteN(0x00, buf.Len()))
	assert.Equal(t, -1, buf.IndexByteN(0x00, 3))
	assert.Equal(t, -1, buf.IndexByteN(0xFF, buf.Len()))

	buf.Skip(6)
	assert.Equal(t, -1, buf.IndexByteN(0x00, buf.Len()))
}

func TestNextAndPeek(t *testing.T) {
	buf := New()
	buf.Write([]byte("abc\x00\x00"))

	p := buf.Next(3)
	assert.Equal(t, "abc", string(p))

	b, ok := buf.PeekByte(0)
	assert.True(t, ok)
	assert.Equal(t, byte(0), b)

	b, ok = buf.PeekByte(1)
	assert.True(t, ok)
	assert.Equal(t, byte(0), b)

	_, ok = buf.PeekByte(2)
	assert.False(t, ok)

	// Peek 不移动游标
	assert.Equal(t, 2, buf.Len())
}

func TestCompact(t *testing.T) {
	buf := New()
	buf.Write([]byte("0123456789"))

	buf.Skip(4)
	buf.Compact()
	assert.Equal(t, 6, buf.Len())

	// Compact 之后 Mark 位置归零
	buf.Skip(2)
	buf.Reset()
	assert.Equal(t, 6, buf.Len())
	assert.Equal(t, "456789", string(buf.Next(6)))
}

func TestDrop(t *testing.T) {
	buf := New()
	buf.Write([]byte("0123456789"))
	buf.Skip(2)

	buf.Drop()
	assert.Equal(t, 0, buf.Len())

	buf.Write([]byte{0x07, 0x00, 0x00, 0x00})
	v, ok := buf.ReadInt32LE()
	assert.True(t, ok)
	assert.Equal(t, int32(7), v)
}

func TestIncrementalWrite(t *testing.T) {
	buf := New()
	for i := 0; i < 4; i++ {
		_, ok := buf.ReadInt32LE()
		assert.False(t, ok)
		buf.Write([]byte{0x2A})
	}

	v, ok := buf.ReadInt32LE()
	assert.True(t, ok)
	assert.Equal(t, int32(0x2A2A2A2A), v)
}
