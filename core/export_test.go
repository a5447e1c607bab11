// SPDX-License-Identifier: MPL-2.0

package core

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamBlockCSV(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	d, err := CreateDashboard(app, ctx, CreateDashboardRequest{Name: "Board"})
	require.NoError(t, err)
	block, err := AddBlockToDashboard(app, ctx, d.ID, BlockTable)
	require.NoError(t, err)

	withData := block
	withData.DataSource = DataSource{
		Type:   SourceStatic,
		Static: &StaticSource{StaticData: `[{"b": 2, "a": "x"}, {"b": 3, "a": "y"}]`},
	}
	_, err = UpdateBlockInDashboard(app, ctx, d.ID, withData)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, StreamBlockCSV(app, ctx, d.ID, block.ID, nil, &buf))
	assert.Equal(t, "a,b\nx,2\ny,3\n", buf.String())
}

func TestStreamBlockCSVUnknownBlock(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	d, err := CreateDashboard(app, ctx, CreateDashboardRequest{Name: "Board"})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = StreamBlockCSV(app, ctx, d.ID, "missing", nil, &buf)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStreamBlockXLSX(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	d, err := CreateDashboard(app, ctx, CreateDashboardRequest{Name: "Board"})
	require.NoError(t, err)
	block, err := AddBlockToDashboard(app, ctx, d.ID, BlockTable)
	require.NoError(t, err)

	withData := block
	withData.DataSource = DataSource{
		Type:   SourceStatic,
		Static: &StaticSource{StaticData: `[{"n": 1}]`},
	}
	_, err = UpdateBlockInDashboard(app, ctx, d.ID, withData)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, StreamBlockXLSX(app, ctx, d.ID, block.ID, nil, &buf))
	// XLSX is a zip container.
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}
