/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package linktest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/mumble-link/pkg/record"
)

func TestViewsShareRegion(t *testing.T) {
	region := NewRegion()
	a, b := region.Map(), region.Map()

	rec := record.New("App", "Desc")
	buf, err := rec.AppendBinary(nil)
	require.NoError(t, err)
	a.Store(buf)

	got := make([]byte, record.Size)
	b.Load(got)
	assert.Equal(t, buf, got)
	assert.Equal(t, 1, a.Stores())
	assert.Equal(t, 1, b.Loads())

	require.NoError(t, a.Close())
	assert.ErrorIs(t, a.Close(), ErrClosed)
	a.Store(make([]byte, record.Size))
	assert.Equal(t, "App", region.Record().NameText())
}

func TestScriptAppliesOnePerLoad(t *testing.T) {
	region := NewRegion()
	view := region.Map()
	region.Script(Header{2, 10}, Header{2, 11})
	assert.Equal(t, 2, region.Pending())

	buf := make([]byte, record.Size)
	view.Load(buf)
	version, tick := record.Header(buf)
	assert.Equal(t, uint32(2), version)
	assert.Equal(t, uint32(10), tick)

	view.Load(buf)
	_, tick = record.Header(buf)
	assert.Equal(t, uint32(11), tick)

	view.Load(buf)
	_, tick = record.Header(buf)
	assert.Equal(t, uint32(11), tick)
	assert.Zero(t, region.Pending())
}

func TestPublishAndClosedLoad(t *testing.T) {
	region := NewRegion()
	rec := record.New("Other", "Game")
	rec.Tick = 7
	region.Publish(&rec)

	version, tick := region.Header()
	assert.Equal(t, uint32(record.Version), version)
	assert.Equal(t, uint32(7), tick)

	view := region.Map()
	require.NoError(t, view.Close())
	buf := []byte{1, 2}
	view.Load(buf)
	assert.Equal(t, []byte{0, 0}, buf)
	assert.True(t, view.Closed())
	assert.Same(t, region, view.Region())
}
