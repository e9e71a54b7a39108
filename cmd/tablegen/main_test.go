package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestReadDistributionSkipsBlankAndCommentLines(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "dist.txt")
	require.NoError(os.WriteFile(path, []byte("# age-of-mother weights\n1\n3\n\n6\n10\n"), 0o644))

	dist, err := readDistribution(path)
	require.NoError(err)
	require.Equal([]float64{1, 3, 6, 10}, dist)
}

func TestWriteArtifactRoundTrips(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "table.yaml")
	artifact := tableArtifact{
		AgeOfMotherDistribution: []float64{1, 2, 4, 2, 1},
		AgeOfMotherMultiplier:   320,
	}

	require.NoError(writeArtifact(path, artifact))

	data, err := os.ReadFile(path)
	require.NoError(err)

	var got tableArtifact
	require.NoError(yaml.Unmarshal(data, &got))
	require.Equal(artifact, got)
}
