// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package pp2

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadBoardProfile(t *testing.T) {
	path := writeProfile(t, `
name: cn9130-crb
maxPortRxqs: 16
tclk: 250000000
device: f2000000.ethernet
regions:
  - base: 0xf2000000
    size: 0x100000
    flush: 0x50b0
  - base: 0xf2129000
    size: 0xb000
    flush: 0x1204
`)
	b, err := LoadBoardProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "cn9130-crb", b.Name)
	assert.Equal(t, MVPP22, b.HwVersion, "missing fields keep the default")
	assert.Equal(t, 16, b.MaxPortRxqs)
	assert.Equal(t, uint32(250000000), b.Tclk)
	assert.Equal(t, DefaultBoardProfile().Regions, b.Regions)
}

func TestLoadBoardProfileErrors(t *testing.T) {
	_, err := LoadBoardProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadBoardProfile(writeProfile(t, "hwVersion: PPv2.1\n"))
	assert.ErrorContains(t, err, "unsupported hardware version")

	_, err = LoadBoardProfile(writeProfile(t, "tclk: 0\n"))
	assert.ErrorContains(t, err, "tclk")

	_, err = LoadBoardProfile(writeProfile(t, "name: [unterminated\n"))
	assert.Error(t, err)

	for _, flush := range []string{"0x1000", "0xffe", "0x2"} {
		_, err = LoadBoardProfile(writeProfile(t, "regions:\n  - base: 0xf2000000\n    size: 0x1000\n    flush: "+flush+"\n"))
		assert.ErrorContains(t, err, "outside region", "flush %s", flush)
	}
	_, err = LoadBoardProfile(writeProfile(t, "regions:\n  - base: 0xf2000000\n    size: 0x1000\n    flush: 0xffc\n"))
	assert.NoError(t, err, "last register of the region")
}

const testIomem = `00000000-ffffffff : PCI mem
  f2000000-f20fffff : f2000000.ethernet
  f2129000-f2133fff : f2000000.ethernet
  f4000000-f40fffff : f4000000.ethernet
80000000-ffffffff : System RAM
`

func TestParseIomem(t *testing.T) {
	regions, err := parseIomem(strings.NewReader(testIomem), "f2000000.ethernet")
	require.NoError(t, err)
	assert.Equal(t, []RegionSpec{
		{Base: 0xf2000000, Size: 0x100000},
		{Base: 0xf2129000, Size: 0xb000},
	}, regions)

	_, err = parseIomem(strings.NewReader(testIomem), "f6000000.ethernet")
	assert.ErrorIs(t, err, ErrNoSuchResource)

	_, err = parseIomem(strings.NewReader("zz-f20fffff : f2000000.ethernet\n"), "f2000000.ethernet")
	assert.Error(t, err)
}

func TestConfigNormalize(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.normalize())
	assert.Equal(t, DefaultBoardProfile(), cfg.Board)
	assert.Equal(t, DefaultBMPoolTable(), cfg.Pools)
	assert.Equal(t, OnlineCPUs{}, cfg.Threads)
	assert.Equal(t, DefaultParser{}, cfg.Parser)
	assert.Equal(t, DefaultClassifier{}, cfg.Classifier)
	require.NotNil(t, cfg.Mem)
	assert.Nil(t, cfg.Metrics)

	m := NewMetrics(nil, nil)
	withMetrics := Config{Metrics: m}
	require.NoError(t, withMetrics.normalize())
	assert.Same(t, m.Mem, withMetrics.Mem, "controllers allocate from the metrics domain")

	bad := Config{Board: BoardProfile{Name: "old", HwVersion: MVPP21, MaxPortRxqs: 8, Tclk: 1}}
	_, err := NewController(bad)
	assert.Error(t, err)
}

func TestOnlineCPUs(t *testing.T) {
	n, err := OnlineCPUs{}.NumThreads()
	require.NoError(t, err)
	assert.Positive(t, n)
}
